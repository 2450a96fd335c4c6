package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/ethclient"
	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog/log"
	config "github.com/thirdweb-dev/ethereum-etl/configs"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/metrics"
)

const (
	DEFAULT_MAX_ATTEMPTS        = 5
	DEFAULT_INITIAL_INTERVAL_MS = 500
	DEFAULT_MAX_INTERVAL_MS     = 10_000
)

type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client is a BatchProvider backed by a go-ethereum RPC client, so it speaks
// http, websocket and ipc. Transport failures are retried with exponential
// backoff, JSON-RPC errors inside a batch are returned as responses.
type Client struct {
	RPCClient   *gethRpc.Client
	EthClient   *ethclient.Client
	isWebsocket bool
	url         string
	chainID     *big.Int
	timeout     time.Duration
	retry       RetryConfig
}

func Initialize() (*Client, error) {
	rpcUrl := config.Cfg.RPC.URL
	if rpcUrl == "" {
		return nil, fmt.Errorf("RPC_URL environment variable is not set")
	}
	log.Debug().Msg("Initializing RPC")
	rpcClient, dialErr := gethRpc.Dial(rpcUrl)
	if dialErr != nil {
		return nil, dialErr
	}

	rpc := NewClient(rpcClient, rpcUrl, GetRetryConfig(), time.Duration(config.Cfg.RPC.TimeoutSeconds)*time.Second)
	chainIdErr := rpc.setChainID(context.Background())
	if chainIdErr != nil {
		rpc.Close()
		return nil, chainIdErr
	}
	log.Info().Str("url", rpc.url).Str("chain_id", rpc.chainID.String()).Msg("Connected to RPC")
	return rpc, nil
}

func NewClient(rpcClient *gethRpc.Client, url string, retry RetryConfig, timeout time.Duration) *Client {
	return &Client{
		RPCClient:   rpcClient,
		EthClient:   ethclient.NewClient(rpcClient),
		url:         url,
		isWebsocket: strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://"),
		timeout:     timeout,
		retry:       retry,
	}
}

func GetRetryConfig() RetryConfig {
	maxAttempts := config.Cfg.RPC.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DEFAULT_MAX_ATTEMPTS
	}
	initialIntervalMs := config.Cfg.RPC.Retry.InitialIntervalMs
	if initialIntervalMs <= 0 {
		initialIntervalMs = DEFAULT_INITIAL_INTERVAL_MS
	}
	maxIntervalMs := config.Cfg.RPC.Retry.MaxIntervalMs
	if maxIntervalMs <= 0 {
		maxIntervalMs = DEFAULT_MAX_INTERVAL_MS
	}
	return RetryConfig{
		MaxAttempts:     maxAttempts,
		InitialInterval: time.Duration(initialIntervalMs) * time.Millisecond,
		MaxInterval:     time.Duration(maxIntervalMs) * time.Millisecond,
	}
}

func (rpc *Client) GetChainID() *big.Int {
	return rpc.chainID
}

func (rpc *Client) GetURL() string {
	return rpc.url
}

func (rpc *Client) IsWebsocket() bool {
	return rpc.isWebsocket
}

func (rpc *Client) Close() {
	rpc.RPCClient.Close()
}

func (rpc *Client) setChainID(ctx context.Context) error {
	chainID, err := rpc.EthClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %v", err)
	}
	rpc.chainID = chainID
	return nil
}

func (rpc *Client) MakeRequest(ctx context.Context, batch []Request) ([]Response, error) {
	if len(batch) == 0 {
		return []Response{}, nil
	}
	start := time.Now()

	elems := make([]gethRpc.BatchElem, len(batch))
	results := make([]json.RawMessage, len(batch))
	operation := func() error {
		for i, req := range batch {
			results[i] = nil
			elems[i] = gethRpc.BatchElem{
				Method: req.Method,
				Args:   req.Params,
				Result: &results[i],
			}
		}
		callCtx := ctx
		if rpc.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, rpc.timeout)
			defer cancel()
		}
		metrics.RPCRoundTrips.Inc()
		metrics.RPCBatchRequests.Add(float64(len(batch)))
		err := rpc.RPCClient.BatchCallContext(callCtx, elems)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		metrics.RPCRetries.Inc()
		log.Warn().Err(err).Int("batch_size", len(batch)).Dur("retry_in", wait).Msg("RPC batch call failed, retrying")
	}
	if err := backoff.RetryNotify(operation, rpc.newBackOff(ctx), notify); err != nil {
		return nil, fmt.Errorf("%w: batch call of %d requests failed: %v", common.ErrRPCBatch, len(batch), err)
	}
	metrics.RPCBatchDuration.Observe(time.Since(start).Seconds())

	responses := make([]Response, len(batch))
	for i, elem := range elems {
		responses[i] = Response{JSONRPC: "2.0", ID: batch[i].ID}
		if elem.Error != nil {
			responses[i].Error = toRPCError(elem.Error)
			continue
		}
		responses[i].Result = results[i]
	}
	return responses, nil
}

func (rpc *Client) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = rpc.retry.InitialInterval
	exp.MaxInterval = rpc.retry.MaxInterval
	exp.MaxElapsedTime = 0
	maxRetries := 0
	if rpc.retry.MaxAttempts > 1 {
		maxRetries = rpc.retry.MaxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(maxRetries)), ctx)
}

func toRPCError(err error) *RPCError {
	var rpcErr gethRpc.Error
	if errors.As(err, &rpcErr) {
		return &RPCError{Code: rpcErr.ErrorCode(), Message: rpcErr.Error()}
	}
	return &RPCError{Message: err.Error()}
}

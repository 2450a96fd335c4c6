package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

const (
	MethodGetBlockByNumber      = "eth_getBlockByNumber"
	MethodGetTransactionReceipt = "eth_getTransactionReceipt"
)

type Request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// BatchProvider executes one JSON-RPC batch call. Responses correlate to
// requests by ID and may come back in any order. Implementations must be safe
// for concurrent use.
type BatchProvider interface {
	MakeRequest(ctx context.Context, batch []Request) ([]Response, error)
}

func GetBlockByNumberRequests(blockNumbers []int64, fullTransactions bool) []Request {
	requests := make([]Request, len(blockNumbers))
	for i, blockNumber := range blockNumbers {
		requests[i] = Request{
			JSONRPC: "2.0",
			ID:      i,
			Method:  MethodGetBlockByNumber,
			Params:  GetBlockByNumberParams(blockNumber, fullTransactions),
		}
	}
	return requests
}

func GetTransactionReceiptRequests(txHashes []string) []Request {
	requests := make([]Request, len(txHashes))
	for i, txHash := range txHashes {
		requests[i] = Request{
			JSONRPC: "2.0",
			ID:      i,
			Method:  MethodGetTransactionReceipt,
			Params:  GetTransactionReceiptParams(txHash),
		}
	}
	return requests
}

// ResponsesToResults correlates a batch of responses with the requests that
// produced them and returns the results in request order.
func ResponsesToResults(requests []Request, responses []Response) ([]json.RawMessage, error) {
	positions := make(map[int]int, len(requests))
	for i, req := range requests {
		positions[req.ID] = i
	}

	results := make([]json.RawMessage, len(requests))
	seen := make([]bool, len(requests))
	for _, resp := range responses {
		pos, ok := positions[resp.ID]
		if !ok {
			return nil, fmt.Errorf("%w: response id %d does not match any request", common.ErrRPCBatch, resp.ID)
		}
		if seen[pos] {
			return nil, fmt.Errorf("%w: duplicate response for id %d", common.ErrRPCBatch, resp.ID)
		}
		seen[pos] = true

		req := requests[pos]
		if resp.Error != nil {
			return nil, fmt.Errorf("%w: %s %v failed: %v", common.ErrRPCBatch, req.Method, req.Params, resp.Error)
		}
		if len(resp.Result) == 0 || bytes.Equal(bytes.TrimSpace(resp.Result), []byte("null")) {
			return nil, fmt.Errorf("%w: %s %v returned no result", common.ErrRPCBatch, req.Method, req.Params)
		}
		results[pos] = resp.Result
	}

	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: no response for request id %d", common.ErrRPCBatch, requests[i].ID)
		}
	}
	return results, nil
}

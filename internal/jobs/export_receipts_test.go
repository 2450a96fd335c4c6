package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
	"github.com/thirdweb-dev/ethereum-etl/internal/exporter"
	"github.com/thirdweb-dev/ethereum-etl/internal/mapper"
	"github.com/thirdweb-dev/ethereum-etl/internal/rpc"
	"github.com/thirdweb-dev/ethereum-etl/test/mocks"
)

func rawReceipt(hash string, logCount int) json.RawMessage {
	logs := make([]interface{}, logCount)
	for i := range logs {
		logs[i] = map[string]interface{}{
			"logIndex":         fmt.Sprintf("0x%x", i),
			"transactionHash":  hash,
			"transactionIndex": "0x0",
			"blockHash":        blockHash(9),
			"blockNumber":      "0x9",
			"address":          "0x5DF9B87991262F6BA471F09758CDE1C0FC1DE734",
			"data":             "0x",
			"topics":           []string{"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"},
		}
	}
	raw, _ := json.Marshal(map[string]interface{}{
		"transactionHash":   hash,
		"transactionIndex":  "0x0",
		"blockHash":         blockHash(9),
		"blockNumber":       "0x9",
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"contractAddress":   nil,
		"status":            "0x1",
		"logs":              logs,
	})
	return raw
}

func receiptNode(ctx context.Context, requests []rpc.Request) ([]rpc.Response, error) {
	responses := make([]rpc.Response, len(requests))
	for i, req := range requests {
		hash := req.Params[0].(string)
		if req.Method != rpc.MethodGetTransactionReceipt {
			return nil, fmt.Errorf("unexpected method %s", req.Method)
		}
		responses[len(requests)-1-i] = rpc.Response{JSONRPC: "2.0", ID: req.ID, Result: rawReceipt(hash, 2)}
	}
	return responses, nil
}

func TestExportReceiptsJob(t *testing.T) {
	provider := mocks.NewMockBatchProvider(t)
	provider.On("MakeRequest", mock.Anything, mock.Anything).Return(receiptNode)
	sink := exporter.NewInMemoryExporter()

	hashes := []string{txHash(9, 0), txHash(9, 1), txHash(9, 2)}
	job, err := NewExportReceiptsJob(ExportReceiptsConfig{
		TransactionHashes: hashes,
		BatchSize:         2,
		MaxWorkers:        1,
		ExportReceipts:    true,
		ExportLogs:        true,
	}, provider, sink)
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), job))

	provider.AssertNumberOfCalls(t, "MakeRequest", 2)
	assert.Equal(t, []*common.Schema{mapper.ReceiptSchema, mapper.LogSchema}, sink.Schemas())

	items := sink.Items()
	require.Len(t, items, 9)
	for i, hash := range hashes {
		receipt := items[i*3]
		assert.Equal(t, common.ItemTypeReceipt, receipt.Type())
		v, _ := receipt.Get("transaction_hash")
		assert.Equal(t, hash, v)
		status, _ := receipt.Get("status")
		assert.Equal(t, int64(1), status)
		contract, _ := receipt.Get("contract_address")
		assert.Nil(t, contract)

		for j := 1; j <= 2; j++ {
			l := items[i*3+j].Map()
			assert.Equal(t, common.ItemTypeLog, items[i*3+j].Type())
			assert.Equal(t, hash, l["transaction_hash"])
			assert.Equal(t, int64(j-1), l["log_index"])
			assert.Equal(t, "0x5df9b87991262f6ba471f09758cde1c0fc1de734", l["address"])
		}
	}
}

func TestExportReceiptsJob_LogsOnly(t *testing.T) {
	provider := mocks.NewMockBatchProvider(t)
	provider.On("MakeRequest", mock.Anything, mock.Anything).Return(receiptNode)
	sink := exporter.NewInMemoryExporter()

	job, err := NewExportReceiptsJob(ExportReceiptsConfig{
		TransactionHashes: []string{txHash(9, 0)},
		BatchSize:         10,
		MaxWorkers:        4,
		ExportLogs:        true,
	}, provider, sink)
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), job))

	assert.Empty(t, sink.ItemsOfType(common.ItemTypeReceipt))
	assert.Len(t, sink.ItemsOfType(common.ItemTypeLog), 2)
}

func TestExportReceiptsJob_NoHashes(t *testing.T) {
	provider := mocks.NewMockBatchProvider(t)
	sink := exporter.NewInMemoryExporter()

	job, err := NewExportReceiptsJob(ExportReceiptsConfig{BatchSize: 10, MaxWorkers: 1, ExportReceipts: true}, provider, sink)
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), job))
	assert.Empty(t, sink.Items())
	assert.Equal(t, 1, sink.Closed())
}

func TestNewExportReceiptsJob_InvalidConfiguration(t *testing.T) {
	_, err := NewExportReceiptsJob(ExportReceiptsConfig{BatchSize: 1, MaxWorkers: 1}, mocks.NewMockBatchProvider(t), exporter.NewInMemoryExporter())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewExportReceiptsJob(ExportReceiptsConfig{BatchSize: 1, MaxWorkers: -1, ExportLogs: true}, mocks.NewMockBatchProvider(t), exporter.NewInMemoryExporter())
	assert.ErrorIs(t, err, common.ErrConfiguration)

	assert.ErrorIs(t, ExportReceiptsConfig{BatchSize: 0, MaxWorkers: 1, ExportReceipts: true}.Validate(), common.ErrConfiguration)
	assert.NoError(t, ExportReceiptsConfig{BatchSize: 1, MaxWorkers: 1, ExportLogs: true}.Validate())
}

func TestExportReceiptsJob_RPCError(t *testing.T) {
	provider := mocks.NewMockBatchProvider(t)
	provider.On("MakeRequest", mock.Anything, mock.Anything).Return([]rpc.Response{
		{JSONRPC: "2.0", ID: 0, Error: &rpc.RPCError{Code: -32000, Message: "unknown transaction"}},
	}, nil).Once()
	sink := exporter.NewInMemoryExporter()

	job, err := NewExportReceiptsJob(ExportReceiptsConfig{
		TransactionHashes: []string{"0xdead"},
		BatchSize:         1,
		MaxWorkers:        1,
		ExportReceipts:    true,
	}, provider, sink)
	require.NoError(t, err)

	err = Run(context.Background(), job)
	assert.ErrorIs(t, err, common.ErrRPCBatch)
	assert.ErrorContains(t, err, "unknown transaction")
	assert.Empty(t, sink.Items())
}

func TestExportReceiptsJob_TransportError(t *testing.T) {
	provider := mocks.NewMockBatchProvider(t)
	provider.On("MakeRequest", mock.Anything, mock.Anything).Return(nil, errors.New("i/o timeout")).Once()
	sink := exporter.NewInMemoryExporter()

	job, err := NewExportReceiptsJob(ExportReceiptsConfig{
		TransactionHashes: []string{txHash(1, 0)},
		BatchSize:         1,
		MaxWorkers:        1,
		ExportReceipts:    true,
	}, provider, sink)
	require.NoError(t, err)

	err = Run(context.Background(), job)
	assert.ErrorIs(t, err, common.ErrRPCBatch)
	assert.ErrorContains(t, err, "i/o timeout")
}

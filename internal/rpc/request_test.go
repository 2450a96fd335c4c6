package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

func TestGetBlockByNumberRequests(t *testing.T) {
	requests := GetBlockByNumberRequests([]int64{100, 101}, true)
	require.Len(t, requests, 2)
	assert.Equal(t, Request{JSONRPC: "2.0", ID: 0, Method: "eth_getBlockByNumber", Params: []interface{}{"0x64", true}}, requests[0])
	assert.Equal(t, Request{JSONRPC: "2.0", ID: 1, Method: "eth_getBlockByNumber", Params: []interface{}{"0x65", true}}, requests[1])

	requests = GetBlockByNumberRequests([]int64{0}, false)
	assert.Equal(t, []interface{}{"0x0", false}, requests[0].Params)
}

func TestGetTransactionReceiptRequests(t *testing.T) {
	requests := GetTransactionReceiptRequests([]string{"0xaa", "0xbb"})
	require.Len(t, requests, 2)
	assert.Equal(t, "eth_getTransactionReceipt", requests[1].Method)
	assert.Equal(t, []interface{}{"0xbb"}, requests[1].Params)
	assert.Equal(t, 1, requests[1].ID)
}

func TestResponsesToResults_OrdersByRequest(t *testing.T) {
	requests := GetBlockByNumberRequests([]int64{5, 6, 7}, false)
	responses := []Response{
		{ID: 2, Result: json.RawMessage(`{"number":"0x7"}`)},
		{ID: 0, Result: json.RawMessage(`{"number":"0x5"}`)},
		{ID: 1, Result: json.RawMessage(`{"number":"0x6"}`)},
	}

	results, err := ResponsesToResults(requests, responses)
	require.NoError(t, err)
	assert.JSONEq(t, `{"number":"0x5"}`, string(results[0]))
	assert.JSONEq(t, `{"number":"0x6"}`, string(results[1]))
	assert.JSONEq(t, `{"number":"0x7"}`, string(results[2]))
}

func TestResponsesToResults_Errors(t *testing.T) {
	requests := GetBlockByNumberRequests([]int64{5, 6}, false)
	ok := json.RawMessage(`{"number":"0x5"}`)

	cases := map[string][]Response{
		"unknown id": {{ID: 0, Result: ok}, {ID: 7, Result: ok}},
		"duplicate":  {{ID: 0, Result: ok}, {ID: 0, Result: ok}},
		"missing":    {{ID: 0, Result: ok}},
		"rpc error":  {{ID: 0, Result: ok}, {ID: 1, Error: &RPCError{Code: -32000, Message: "header not found"}}},
		"null":       {{ID: 0, Result: ok}, {ID: 1, Result: json.RawMessage(`null`)}},
	}
	for name, responses := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResponsesToResults(requests, responses)
			assert.ErrorIs(t, err, common.ErrRPCBatch)
		})
	}
}

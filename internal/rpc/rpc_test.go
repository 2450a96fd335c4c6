package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gethRpc "github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type fakeMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// newFakeNode answers batched eth_getBlockByNumber calls in reverse order.
// Block 0xdead is reported as an RPC error. The first `failures` calls fail with HTTP 503.
func newFakeNode(t *testing.T, failures int32) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= failures {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		var batch []fakeMessage
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		out := make([]map[string]interface{}, 0, len(batch))
		for i := len(batch) - 1; i >= 0; i-- {
			msg := batch[i]
			var number string
			assert.NoError(t, json.Unmarshal(msg.Params[0], &number))
			resp := map[string]interface{}{"jsonrpc": "2.0", "id": msg.ID}
			if number == "0xdead" {
				resp["error"] = map[string]interface{}{"code": -32000, "message": "header not found"}
			} else {
				resp["result"] = map[string]interface{}{"number": number}
			}
			out = append(out, resp)
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(out))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestClient(t *testing.T, url string) *Client {
	rpcClient, err := gethRpc.DialHTTP(url)
	require.NoError(t, err)
	t.Cleanup(rpcClient.Close)
	return NewClient(rpcClient, url, RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}, time.Second)
}

func TestClient_MakeRequest(t *testing.T) {
	server, calls := newFakeNode(t, 0)
	client := newTestClient(t, server.URL)

	requests := GetBlockByNumberRequests([]int64{100, 101, 102}, false)
	responses, err := client.MakeRequest(context.Background(), requests)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	results, err := ResponsesToResults(requests, responses)
	require.NoError(t, err)
	for i, expected := range []string{"0x64", "0x65", "0x66"} {
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(results[i], &raw))
		assert.Equal(t, expected, raw["number"])
	}
}

func TestClient_MakeRequest_RPCErrorIsAResponse(t *testing.T) {
	server, _ := newFakeNode(t, 0)
	client := newTestClient(t, server.URL)

	requests := GetBlockByNumberRequests([]int64{100, 0xdead}, false)
	responses, err := client.MakeRequest(context.Background(), requests)
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[1].Error)
	assert.Equal(t, -32000, responses[1].Error.Code)

	_, err = ResponsesToResults(requests, responses)
	assert.ErrorIs(t, err, common.ErrRPCBatch)
}

func TestClient_MakeRequest_RetriesTransportFailures(t *testing.T) {
	server, calls := newFakeNode(t, 2)
	client := newTestClient(t, server.URL)

	responses, err := client.MakeRequest(context.Background(), GetBlockByNumberRequests([]int64{1}, false))
	require.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

func TestClient_MakeRequest_GivesUp(t *testing.T) {
	server, calls := newFakeNode(t, 100)
	client := newTestClient(t, server.URL)

	_, err := client.MakeRequest(context.Background(), GetBlockByNumberRequests([]int64{1}, false))
	assert.ErrorIs(t, err, common.ErrRPCBatch)
	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
}

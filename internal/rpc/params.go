package rpc

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func GetBlockByNumberParams(blockNumber int64, fullTransactions bool) []interface{} {
	return []interface{}{hexutil.EncodeUint64(uint64(blockNumber)), fullTransactions}
}

func GetTransactionReceiptParams(txHash string) []interface{} {
	return []interface{}{txHash}
}

package common

import (
	"math/big"
)

type Block struct {
	Number           int64
	Hash             string
	ParentHash       string
	Nonce            string
	Sha3Uncles       string
	LogsBloom        string
	TransactionsRoot string
	StateRoot        string
	ReceiptsRoot     string
	Miner            *string
	Difficulty       *big.Int
	TotalDifficulty  *big.Int
	Size             *int64
	ExtraData        string
	GasLimit         *int64
	GasUsed          *int64
	Timestamp        int64
	// TransactionCount is nil when the node result carried no transactions key.
	TransactionCount *int64
	Transactions     []Transaction
}

package common

import (
	"math/big"
)

type Transaction struct {
	Hash             string
	Nonce            *int64
	BlockHash        string
	BlockNumber      *int64
	TransactionIndex *int64
	FromAddress      *string
	// ToAddress is nil for contract creation.
	ToAddress *string
	Value     *big.Int
	Gas       *int64
	GasPrice  *int64
	Input     string
}

package mapper

import (
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) FromRPC(raw Raw) (common.Transaction, error) {
	r := newRawReader(raw)
	tx := common.Transaction{
		Hash:             r.requiredString("hash"),
		Nonce:            r.int64("nonce"),
		BlockHash:        r.string("blockHash"),
		BlockNumber:      r.int64("blockNumber"),
		TransactionIndex: r.int64("transactionIndex"),
		FromAddress:      r.address("from"),
		ToAddress:        r.address("to"),
		Value:            r.bigInt("value"),
		Gas:              r.int64("gas"),
		GasPrice:         r.int64("gasPrice"),
		Input:            r.string("input"),
	}
	if r.err != nil {
		return common.Transaction{}, fmt.Errorf("failed to map transaction %s: %w", tx.Hash, r.err)
	}
	return tx, nil
}

func (m *TransactionMapper) ToItem(tx common.Transaction) common.Item {
	return common.Item{
		Schema: TransactionSchema,
		Values: []interface{}{
			tx.Hash,
			int64Value(tx.Nonce),
			opaqueValue(tx.BlockHash),
			int64Value(tx.BlockNumber),
			int64Value(tx.TransactionIndex),
			stringValue(tx.FromAddress),
			stringValue(tx.ToAddress),
			decimalValue(tx.Value),
			int64Value(tx.Gas),
			int64Value(tx.GasPrice),
			opaqueValue(tx.Input),
		},
	}
}

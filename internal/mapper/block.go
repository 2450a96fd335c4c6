package mapper

import (
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type BlockMapper struct {
	transactionMapper *TransactionMapper
}

func NewBlockMapper(transactionMapper *TransactionMapper) *BlockMapper {
	if transactionMapper == nil {
		transactionMapper = NewTransactionMapper()
	}
	return &BlockMapper{transactionMapper: transactionMapper}
}

// FromRPC maps an eth_getBlockByNumber result. Embedded transactions are
// mapped only when the node returned them as objects; transaction_count
// always reflects the length of the transactions list.
func (m *BlockMapper) FromRPC(raw Raw) (common.Block, error) {
	r := newRawReader(raw)
	block := common.Block{
		Number:           r.requiredInt64("number"),
		Hash:             r.requiredString("hash"),
		ParentHash:       r.string("parentHash"),
		Nonce:            r.string("nonce"),
		Sha3Uncles:       r.string("sha3Uncles"),
		LogsBloom:        r.string("logsBloom"),
		TransactionsRoot: r.string("transactionsRoot"),
		StateRoot:        r.string("stateRoot"),
		ReceiptsRoot:     r.string("receiptsRoot"),
		Miner:            r.address("miner"),
		Difficulty:       r.bigInt("difficulty"),
		TotalDifficulty:  r.bigInt("totalDifficulty"),
		Size:             r.int64("size"),
		ExtraData:        r.string("extraData"),
		GasLimit:         r.int64("gasLimit"),
		GasUsed:          r.int64("gasUsed"),
		Timestamp:        r.requiredInt64("timestamp"),
	}
	rawTransactions, count, present := r.objects("transactions")
	if r.err != nil {
		return common.Block{}, fmt.Errorf("failed to map block %d: %w", block.Number, r.err)
	}
	if present {
		transactionCount := int64(count)
		block.TransactionCount = &transactionCount
		block.Transactions = make([]common.Transaction, 0, len(rawTransactions))
		for _, rawTx := range rawTransactions {
			tx, err := m.transactionMapper.FromRPC(rawTx)
			if err != nil {
				return common.Block{}, fmt.Errorf("failed to map block %d: %w", block.Number, err)
			}
			block.Transactions = append(block.Transactions, tx)
		}
	}
	return block, nil
}

func (m *BlockMapper) ToItem(block common.Block) common.Item {
	return common.Item{
		Schema: BlockSchema,
		Values: []interface{}{
			block.Number,
			block.Hash,
			opaqueValue(block.ParentHash),
			opaqueValue(block.Nonce),
			opaqueValue(block.Sha3Uncles),
			opaqueValue(block.LogsBloom),
			opaqueValue(block.TransactionsRoot),
			opaqueValue(block.StateRoot),
			opaqueValue(block.ReceiptsRoot),
			stringValue(block.Miner),
			decimalValue(block.Difficulty),
			decimalValue(block.TotalDifficulty),
			int64Value(block.Size),
			opaqueValue(block.ExtraData),
			int64Value(block.GasLimit),
			int64Value(block.GasUsed),
			block.Timestamp,
			int64Value(block.TransactionCount),
		},
	}
}

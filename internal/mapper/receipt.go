package mapper

import (
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type ReceiptMapper struct {
	logMapper *LogMapper
}

func NewReceiptMapper(logMapper *LogMapper) *ReceiptMapper {
	if logMapper == nil {
		logMapper = NewLogMapper()
	}
	return &ReceiptMapper{logMapper: logMapper}
}

func (m *ReceiptMapper) FromRPC(raw Raw) (common.Receipt, error) {
	r := newRawReader(raw)
	receipt := common.Receipt{
		TransactionHash:   r.requiredString("transactionHash"),
		TransactionIndex:  r.int64("transactionIndex"),
		BlockHash:         r.string("blockHash"),
		BlockNumber:       r.int64("blockNumber"),
		CumulativeGasUsed: r.int64("cumulativeGasUsed"),
		GasUsed:           r.int64("gasUsed"),
		ContractAddress:   r.address("contractAddress"),
		Root:              r.optionalString("root"),
		Status:            r.int64("status"),
	}
	rawLogs, _, present := r.objects("logs")
	if r.err != nil {
		return common.Receipt{}, fmt.Errorf("failed to map receipt %s: %w", receipt.TransactionHash, r.err)
	}
	if present {
		receipt.Logs = make([]common.Log, 0, len(rawLogs))
		for _, rawLog := range rawLogs {
			l, err := m.logMapper.FromRPC(rawLog)
			if err != nil {
				return common.Receipt{}, fmt.Errorf("failed to map receipt %s: %w", receipt.TransactionHash, err)
			}
			receipt.Logs = append(receipt.Logs, l)
		}
	}
	return receipt, nil
}

func (m *ReceiptMapper) ToItem(receipt common.Receipt) common.Item {
	return common.Item{
		Schema: ReceiptSchema,
		Values: []interface{}{
			receipt.TransactionHash,
			int64Value(receipt.TransactionIndex),
			opaqueValue(receipt.BlockHash),
			int64Value(receipt.BlockNumber),
			int64Value(receipt.CumulativeGasUsed),
			int64Value(receipt.GasUsed),
			stringValue(receipt.ContractAddress),
			stringValue(receipt.Root),
			int64Value(receipt.Status),
		},
	}
}

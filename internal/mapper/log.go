package mapper

import (
	"fmt"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

type LogMapper struct{}

func NewLogMapper() *LogMapper {
	return &LogMapper{}
}

func (m *LogMapper) FromRPC(raw Raw) (common.Log, error) {
	r := newRawReader(raw)
	l := common.Log{
		LogIndex:         r.int64("logIndex"),
		TransactionHash:  r.string("transactionHash"),
		TransactionIndex: r.int64("transactionIndex"),
		BlockHash:        r.string("blockHash"),
		BlockNumber:      r.int64("blockNumber"),
		Address:          r.address("address"),
		Data:             r.string("data"),
		Topics:           r.stringList("topics"),
	}
	if r.err != nil {
		return common.Log{}, fmt.Errorf("failed to map log of transaction %s: %w", l.TransactionHash, r.err)
	}
	return l, nil
}

func (m *LogMapper) ToItem(l common.Log) common.Item {
	return common.Item{
		Schema: LogSchema,
		Values: []interface{}{
			int64Value(l.LogIndex),
			opaqueValue(l.TransactionHash),
			int64Value(l.TransactionIndex),
			opaqueValue(l.BlockHash),
			int64Value(l.BlockNumber),
			stringValue(l.Address),
			opaqueValue(l.Data),
			stringListValue(l.Topics),
		},
	}
}

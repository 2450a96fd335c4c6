package mapper

import "github.com/thirdweb-dev/ethereum-etl/internal/common"

const SchemaVersion = 1

var BlockSchema = &common.Schema{
	Name:    common.ItemTypeBlock,
	Version: SchemaVersion,
	Fields: []common.Field{
		{Name: "number", Type: common.FieldTypeInt64},
		{Name: "hash", Type: common.FieldTypeString},
		{Name: "parent_hash", Type: common.FieldTypeString},
		{Name: "nonce", Type: common.FieldTypeString},
		{Name: "sha3_uncles", Type: common.FieldTypeString},
		{Name: "logs_bloom", Type: common.FieldTypeString},
		{Name: "transactions_root", Type: common.FieldTypeString},
		{Name: "state_root", Type: common.FieldTypeString},
		{Name: "receipts_root", Type: common.FieldTypeString},
		{Name: "miner", Type: common.FieldTypeString},
		{Name: "difficulty", Type: common.FieldTypeDecimal},
		{Name: "total_difficulty", Type: common.FieldTypeDecimal},
		{Name: "size", Type: common.FieldTypeInt64},
		{Name: "extra_data", Type: common.FieldTypeString},
		{Name: "gas_limit", Type: common.FieldTypeInt64},
		{Name: "gas_used", Type: common.FieldTypeInt64},
		{Name: "timestamp", Type: common.FieldTypeInt64},
		{Name: "transaction_count", Type: common.FieldTypeInt64},
	},
}

var TransactionSchema = &common.Schema{
	Name:    common.ItemTypeTransaction,
	Version: SchemaVersion,
	Fields: []common.Field{
		{Name: "hash", Type: common.FieldTypeString},
		{Name: "nonce", Type: common.FieldTypeInt64},
		{Name: "block_hash", Type: common.FieldTypeString},
		{Name: "block_number", Type: common.FieldTypeInt64},
		{Name: "transaction_index", Type: common.FieldTypeInt64},
		{Name: "from_address", Type: common.FieldTypeString},
		{Name: "to_address", Type: common.FieldTypeString},
		{Name: "value", Type: common.FieldTypeDecimal},
		{Name: "gas", Type: common.FieldTypeInt64},
		{Name: "gas_price", Type: common.FieldTypeInt64},
		{Name: "input", Type: common.FieldTypeString},
	},
}

var ReceiptSchema = &common.Schema{
	Name:    common.ItemTypeReceipt,
	Version: SchemaVersion,
	Fields: []common.Field{
		{Name: "transaction_hash", Type: common.FieldTypeString},
		{Name: "transaction_index", Type: common.FieldTypeInt64},
		{Name: "block_hash", Type: common.FieldTypeString},
		{Name: "block_number", Type: common.FieldTypeInt64},
		{Name: "cumulative_gas_used", Type: common.FieldTypeInt64},
		{Name: "gas_used", Type: common.FieldTypeInt64},
		{Name: "contract_address", Type: common.FieldTypeString},
		{Name: "root", Type: common.FieldTypeString},
		{Name: "status", Type: common.FieldTypeInt64},
	},
}

var LogSchema = &common.Schema{
	Name:    common.ItemTypeLog,
	Version: SchemaVersion,
	Fields: []common.Field{
		{Name: "log_index", Type: common.FieldTypeInt64},
		{Name: "transaction_hash", Type: common.FieldTypeString},
		{Name: "transaction_index", Type: common.FieldTypeInt64},
		{Name: "block_hash", Type: common.FieldTypeString},
		{Name: "block_number", Type: common.FieldTypeInt64},
		{Name: "address", Type: common.FieldTypeString},
		{Name: "data", Type: common.FieldTypeString},
		{Name: "topics", Type: common.FieldTypeStringList},
	},
}

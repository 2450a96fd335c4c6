package common

type Receipt struct {
	TransactionHash   string
	TransactionIndex  *int64
	BlockHash         string
	BlockNumber       *int64
	CumulativeGasUsed *int64
	GasUsed           *int64
	// ContractAddress is only set for contract creation transactions.
	ContractAddress *string
	// Root is the pre-Byzantium intermediate state root.
	Root *string
	// Status is 0 or 1 after Byzantium.
	Status *int64
	Logs   []Log
}

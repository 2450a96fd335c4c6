package common

type Log struct {
	LogIndex         *int64
	TransactionHash  string
	TransactionIndex *int64
	BlockHash        string
	BlockNumber      *int64
	Address          *string
	Data             string
	Topics           []string
}

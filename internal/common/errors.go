package common

import "errors"

var (
	// ErrInvalidRange is returned when a job is built with start block greater than end block.
	ErrInvalidRange = errors.New("invalid block range")
	// ErrConfiguration is returned when a job is built with no item type enabled or invalid sizing.
	ErrConfiguration = errors.New("invalid export configuration")
	// ErrMalformedHex is returned when a field expected to be hex encoded cannot be parsed.
	ErrMalformedHex = errors.New("malformed hex value")
	// ErrMissingField is returned when a required field is absent from an RPC result.
	ErrMissingField = errors.New("missing required field")
	// ErrRPCBatch is returned when a batch call fails or its responses do not correlate to the requests.
	ErrRPCBatch = errors.New("rpc batch error")
	// ErrExportSink is returned when the item exporter fails to open, write or close.
	ErrExportSink = errors.New("export sink error")
)

package common

import (
	"fmt"
	"math/big"
	"strings"
)

// HexToDec parses a hex encoded quantity as returned by the node.
// A nil value is absent and yields a nil result, never zero.
func HexToDec(value interface{}) (*big.Int, error) {
	if value == nil {
		return nil, nil
	}
	hexString, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected string, got %T", ErrMalformedHex, value)
	}
	digits := hexString
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return nil, fmt.Errorf("%w: %q has no digits", ErrMalformedHex, hexString)
	}
	for _, c := range digits {
		if !isHexDigit(c) {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHex, hexString)
		}
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMalformedHex, hexString)
	}
	return v, nil
}

// HexToInt64 is HexToDec for fields exported as int64.
func HexToInt64(value interface{}) (*int64, error) {
	v, err := HexToDec(value)
	if err != nil || v == nil {
		return nil, err
	}
	if !v.IsInt64() {
		return nil, fmt.Errorf("%w: %v overflows int64", ErrMalformedHex, value)
	}
	i := v.Int64()
	return &i, nil
}

// ToNormalizedAddress lower-cases a hex address. The checksum is not validated.
func ToNormalizedAddress(value interface{}) (*string, error) {
	if value == nil {
		return nil, nil
	}
	address, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: expected address string, got %T", ErrMalformedHex, value)
	}
	normalized := strings.ToLower(address)
	return &normalized, nil
}

func isHexDigit(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

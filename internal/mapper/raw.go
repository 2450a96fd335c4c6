package mapper

import (
	"fmt"
	"math/big"

	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

// Raw is a decoded JSON-RPC result object with the node's camelCase keys.
type Raw = map[string]interface{}

// rawReader reads typed fields out of a Raw object and keeps the first error.
type rawReader struct {
	raw Raw
	err error
}

func newRawReader(raw Raw) *rawReader {
	return &rawReader{raw: raw}
}

func (r *rawReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("field %s: %w", key, err)
	}
}

func (r *rawReader) string(key string) string {
	value := r.raw[key]
	if value == nil {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		r.fail(key, fmt.Errorf("%w: expected string, got %T", common.ErrMalformedHex, value))
		return ""
	}
	return s
}

func (r *rawReader) requiredString(key string) string {
	if r.raw[key] == nil {
		r.fail(key, common.ErrMissingField)
		return ""
	}
	return r.string(key)
}

func (r *rawReader) optionalString(key string) *string {
	if r.raw[key] == nil {
		return nil
	}
	s := r.string(key)
	return &s
}

func (r *rawReader) int64(key string) *int64 {
	v, err := common.HexToInt64(r.raw[key])
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return v
}

func (r *rawReader) requiredInt64(key string) int64 {
	v := r.int64(key)
	if v == nil {
		if r.raw[key] == nil {
			r.fail(key, common.ErrMissingField)
		}
		return 0
	}
	return *v
}

func (r *rawReader) bigInt(key string) *big.Int {
	v, err := common.HexToDec(r.raw[key])
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return v
}

func (r *rawReader) address(key string) *string {
	v, err := common.ToNormalizedAddress(r.raw[key])
	if err != nil {
		r.fail(key, err)
		return nil
	}
	return v
}

func (r *rawReader) stringList(key string) []string {
	value := r.raw[key]
	if value == nil {
		return nil
	}
	list, ok := value.([]interface{})
	if !ok {
		r.fail(key, fmt.Errorf("%w: expected list, got %T", common.ErrMalformedHex, value))
		return nil
	}
	out := make([]string, 0, len(list))
	for _, element := range list {
		s, ok := element.(string)
		if !ok {
			r.fail(key, fmt.Errorf("%w: expected string element, got %T", common.ErrMalformedHex, element))
			return nil
		}
		out = append(out, s)
	}
	return out
}

// objects returns the structured elements of a list field. Elements that are
// not objects, such as bare transaction hashes, are skipped.
func (r *rawReader) objects(key string) (objects []Raw, length int, present bool) {
	value, present := r.raw[key]
	if !present || value == nil {
		return nil, 0, false
	}
	list, ok := value.([]interface{})
	if !ok {
		r.fail(key, fmt.Errorf("%w: expected list, got %T", common.ErrMalformedHex, value))
		return nil, 0, false
	}
	for _, element := range list {
		if obj, ok := element.(map[string]interface{}); ok {
			objects = append(objects, obj)
		}
	}
	return objects, len(list), true
}

func int64Value(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func stringValue(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// opaqueValue exports an opaque hex string, where empty means absent.
func opaqueValue(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func decimalValue(v *big.Int) interface{} {
	if v == nil {
		return nil
	}
	return v.String()
}

func stringListValue(v []string) interface{} {
	if v == nil {
		return nil
	}
	return v
}

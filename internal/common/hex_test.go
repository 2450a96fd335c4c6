package common

import (
	"fmt"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToDec(t *testing.T) {
	v, err := HexToDec("0x1bc16d674ec80000")
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", v.String())

	v, err = HexToDec("0x0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.Int64())

	v, err = HexToDec("ff")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v.Int64())

	v, err = HexToDec("0X00ff")
	require.NoError(t, err)
	assert.Equal(t, int64(255), v.Int64())
}

func TestHexToDec_AbsentIsNotZero(t *testing.T) {
	v, err := HexToDec(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)

	i, err := HexToInt64(nil)
	assert.NoError(t, err)
	assert.Nil(t, i)
}

func TestHexToDec_Malformed(t *testing.T) {
	for _, input := range []interface{}{"0x", "", "0xzz", "0x-1", "0x+1", "12g", "0x1_0", 12.0, true} {
		_, err := HexToDec(input)
		assert.ErrorIs(t, err, ErrMalformedHex, "input %v", input)
	}
}

func TestHexToDec_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		n := new(big.Int).Rand(r, new(big.Int).Lsh(big.NewInt(1), uint(r.Intn(300)+1)))
		v, err := HexToDec(fmt.Sprintf("0x%x", n))
		require.NoError(t, err)
		assert.Equal(t, 0, n.Cmp(v), "value %s", n)
	}
}

func TestHexToInt64(t *testing.T) {
	v, err := HexToInt64("0x7fffffffffffffff")
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), *v)

	_, err = HexToInt64("0x8000000000000000")
	assert.ErrorIs(t, err, ErrMalformedHex)
}

func TestToNormalizedAddress(t *testing.T) {
	a, err := ToNormalizedAddress("0x971add32Ea87f10bD192671630be3BE8A11b8623")
	require.NoError(t, err)
	assert.Equal(t, "0x971add32ea87f10bd192671630be3be8a11b8623", *a)

	a, err = ToNormalizedAddress(nil)
	assert.NoError(t, err)
	assert.Nil(t, a)

	_, err = ToNormalizedAddress(42)
	assert.ErrorIs(t, err, ErrMalformedHex)
}

func TestItemMap(t *testing.T) {
	schema := &Schema{Name: "thing", Version: 1, Fields: []Field{{Name: "a", Type: FieldTypeString}, {Name: "b", Type: FieldTypeInt64}}}
	item := Item{Schema: schema, Values: []interface{}{"x", nil}}
	assert.Equal(t, map[string]interface{}{"a": "x", "b": nil}, item.Map())
	v, ok := item.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = item.Get("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, schema.FieldNames())
}

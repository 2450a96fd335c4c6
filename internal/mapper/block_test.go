package mapper

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thirdweb-dev/ethereum-etl/internal/common"
)

const rawBlockJSON = `{
	"number": "0x64",
	"hash": "0xdb10afd3efa45327eb284c83cc925bd9bd7966aea53067c1eebe0724d124ec1e",
	"parentHash": "0x4bc63d2c9a5a9d6f5b5b4f0e8f1c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6a7b8c",
	"nonce": "0x1d8ce0f1e3a5d2b7",
	"sha3Uncles": "0x1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347",
	"logsBloom": "0x00",
	"transactionsRoot": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
	"stateRoot": "0xd7f8974fb5ac78d9ac099b9ad5018bedc2ce0a72dad1827a1709da30580f0544",
	"receiptsRoot": "0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421",
	"miner": "0xBB7B8287f3F0a933474a79eAe42CBCa977791171",
	"difficulty": "0x1bc16d674ec80000",
	"totalDifficulty": "0xc70d815d562d3cfa955",
	"size": "0x21b",
	"extraData": "0x476574682f4c5649562f76312e302e302f6c696e75782f676f312e342e32",
	"gasLimit": "0x1388",
	"gasUsed": "0x5208",
	"timestamp": "0x55ba467c",
	"transactions": [
		{
			"hash": "0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060",
			"nonce": "0x0",
			"blockHash": "0xdb10afd3efa45327eb284c83cc925bd9bd7966aea53067c1eebe0724d124ec1e",
			"blockNumber": "0x64",
			"transactionIndex": "0x0",
			"from": "0xA1E4380A3B1f749673E270229993eE55F35663b4",
			"to": "0x5DF9B87991262F6BA471F09758CDE1c0FC1De734",
			"value": "0x7a69",
			"gas": "0x5208",
			"gasPrice": "0x2d79883d2000",
			"input": "0x"
		},
		{
			"hash": "0x9e3e3c2b6d0c4a7f0f3d1b8b7f2e5c1a9d8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a",
			"nonce": "0x1",
			"blockHash": "0xdb10afd3efa45327eb284c83cc925bd9bd7966aea53067c1eebe0724d124ec1e",
			"blockNumber": "0x64",
			"transactionIndex": "0x1",
			"from": "0xa1e4380a3b1f749673e270229993ee55f35663b4",
			"to": null,
			"value": "0xde0b6b3a7640000",
			"gas": "0x2dc6c0",
			"gasPrice": "0x2d79883d2000",
			"input": "0x6060"
		}
	]
}`

func decodeRaw(t *testing.T, s string) Raw {
	t.Helper()
	var raw Raw
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func TestBlockMapper_FromRPC(t *testing.T) {
	m := NewBlockMapper(nil)
	block, err := m.FromRPC(decodeRaw(t, rawBlockJSON))
	require.NoError(t, err)

	assert.Equal(t, int64(100), block.Number)
	assert.Equal(t, "0xdb10afd3efa45327eb284c83cc925bd9bd7966aea53067c1eebe0724d124ec1e", block.Hash)
	assert.Equal(t, "0xbb7b8287f3f0a933474a79eae42cbca977791171", *block.Miner)
	assert.Equal(t, "2000000000000000000", block.Difficulty.String())
	assert.Equal(t, int64(539), *block.Size)
	assert.Equal(t, int64(5000), *block.GasLimit)
	assert.Equal(t, int64(21000), *block.GasUsed)
	assert.Equal(t, int64(1438271100), block.Timestamp)

	require.NotNil(t, block.TransactionCount)
	assert.Equal(t, int64(len(block.Transactions)), *block.TransactionCount)
	for _, tx := range block.Transactions {
		assert.Equal(t, block.Number, *tx.BlockNumber)
		assert.Equal(t, block.Hash, tx.BlockHash)
	}

	first := block.Transactions[0]
	assert.Equal(t, "0xa1e4380a3b1f749673e270229993ee55f35663b4", *first.FromAddress)
	assert.Equal(t, "0x5df9b87991262f6ba471f09758cde1c0fc1de734", *first.ToAddress)
	assert.Equal(t, big.NewInt(31337), first.Value)
	assert.Equal(t, int64(50000000000000), *first.GasPrice)
	assert.Nil(t, block.Transactions[1].ToAddress)
}

func TestBlockMapper_DifficultyIsDecimalString(t *testing.T) {
	m := NewBlockMapper(nil)
	block, err := m.FromRPC(decodeRaw(t, rawBlockJSON))
	require.NoError(t, err)

	item := m.ToItem(block)
	difficulty, ok := item.Get("difficulty")
	require.True(t, ok)
	assert.Equal(t, "2000000000000000000", difficulty)

	totalDifficulty, _ := item.Get("total_difficulty")
	parsed, ok := new(big.Int).SetString(totalDifficulty.(string), 10)
	require.True(t, ok)
	assert.Equal(t, 0, parsed.Cmp(block.TotalDifficulty))
}

func TestBlockMapper_ToItemFieldSet(t *testing.T) {
	m := NewBlockMapper(nil)
	block, err := m.FromRPC(decodeRaw(t, rawBlockJSON))
	require.NoError(t, err)

	item := m.ToItem(block)
	assert.Equal(t, common.ItemTypeBlock, item.Type())
	assert.Len(t, item.Values, len(BlockSchema.Fields))
	assert.Equal(t, []string{
		"number", "hash", "parent_hash", "nonce", "sha3_uncles", "logs_bloom",
		"transactions_root", "state_root", "receipts_root", "miner", "difficulty",
		"total_difficulty", "size", "extra_data", "gas_limit", "gas_used",
		"timestamp", "transaction_count",
	}, BlockSchema.FieldNames())
	count, _ := item.Get("transaction_count")
	assert.Equal(t, int64(2), count)

	txMapper := NewTransactionMapper()
	txItem := txMapper.ToItem(block.Transactions[1])
	assert.Len(t, txItem.Values, len(TransactionSchema.Fields))
	value, _ := txItem.Get("value")
	assert.Equal(t, "1000000000000000000", value)
	to, _ := txItem.Get("to_address")
	assert.Nil(t, to)
}

func TestBlockMapper_Idempotent(t *testing.T) {
	m := NewBlockMapper(nil)
	first, err := m.FromRPC(decodeRaw(t, rawBlockJSON))
	require.NoError(t, err)
	second, err := m.FromRPC(decodeRaw(t, rawBlockJSON))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, m.ToItem(first), m.ToItem(second))
}

func TestBlockMapper_TransactionHashesOnly(t *testing.T) {
	raw := decodeRaw(t, rawBlockJSON)
	raw["transactions"] = []interface{}{"0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060"}

	block, err := NewBlockMapper(nil).FromRPC(raw)
	require.NoError(t, err)
	assert.Empty(t, block.Transactions)
	assert.Equal(t, int64(1), *block.TransactionCount)
}

func TestBlockMapper_AbsentFieldsAreNotZero(t *testing.T) {
	raw := decodeRaw(t, rawBlockJSON)
	delete(raw, "totalDifficulty")
	delete(raw, "size")
	delete(raw, "transactions")

	m := NewBlockMapper(nil)
	block, err := m.FromRPC(raw)
	require.NoError(t, err)
	assert.Nil(t, block.TotalDifficulty)
	assert.Nil(t, block.Size)
	assert.Nil(t, block.TransactionCount)

	item := m.ToItem(block)
	for _, name := range []string{"total_difficulty", "size", "transaction_count"} {
		v, ok := item.Get(name)
		assert.True(t, ok)
		assert.Nil(t, v, name)
	}
}

func TestBlockMapper_MalformedHex(t *testing.T) {
	raw := decodeRaw(t, rawBlockJSON)
	raw["gasUsed"] = "0xnothex"

	_, err := NewBlockMapper(nil).FromRPC(raw)
	assert.ErrorIs(t, err, common.ErrMalformedHex)
	assert.Contains(t, err.Error(), "gasUsed")
}

func TestBlockMapper_MalformedTransaction(t *testing.T) {
	raw := decodeRaw(t, rawBlockJSON)
	raw["transactions"].([]interface{})[0].(map[string]interface{})["value"] = "0x-1"

	_, err := NewBlockMapper(nil).FromRPC(raw)
	assert.ErrorIs(t, err, common.ErrMalformedHex)
}

func TestBlockMapper_MissingNumber(t *testing.T) {
	raw := decodeRaw(t, rawBlockJSON)
	delete(raw, "number")

	_, err := NewBlockMapper(nil).FromRPC(raw)
	assert.ErrorIs(t, err, common.ErrMissingField)
}

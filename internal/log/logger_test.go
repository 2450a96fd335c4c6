package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "github.com/thirdweb-dev/ethereum-etl/configs"
)

func TestNewLogger_TagsCommand(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.LogConfig{Level: "debug"}, "export_blocks_and_transactions")
	require.NoError(t, err)
	logger.Debug().Int64("block", 7).Msg("Exported")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ethereumetl", line["component"])
	assert.Equal(t, "export_blocks_and_transactions", line["command"])
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, float64(7), line["block"])
	assert.Contains(t, line, "caller")
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, config.LogConfig{}, "")
	require.NoError(t, err)
	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), `"command"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, config.LogConfig{Level: "loud"}, "")
	assert.ErrorContains(t, err, "loud")
}

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	config "github.com/thirdweb-dev/ethereum-etl/configs"
)

// InitLogger replaces the zerolog global logger with one tagged with the
// running command. Logs go to stderr, stdout is left to "-" outputs.
func InitLogger(command string) error {
	logger, err := NewLogger(os.Stderr, config.Cfg.Log, command)
	if err != nil {
		return err
	}
	log.Logger = logger
	return nil
}

// NewLogger builds a logger from the log config. An empty level means info.
func NewLogger(w io.Writer, cfg config.LogConfig, command string) (zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		lvl, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = lvl
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Prettify {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	logCtx := zerolog.New(w).With().Timestamp().Str("component", "ethereumetl")
	if command != "" {
		logCtx = logCtx.Str("command", command)
	}
	return logCtx.Caller().Logger(), nil
}

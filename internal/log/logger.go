package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"coworking/internal/config"
)

// New builds the process logger. Production output is uncoloured and filtered to info.
func New(cfg *config.Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(cfg *config.Config, out io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.IsProduction(),
	}

	level := zerolog.DebugLevel
	if cfg.IsProduction() {
		level = zerolog.InfoLevel
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("env", cfg.Environment).
		Logger()
}

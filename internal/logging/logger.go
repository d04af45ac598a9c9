package logging

import (
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NewLogger creates the structured logger for a setup run. Output is the
// human-readable console format since this tool is driven by an operator at
// a terminal; every line carries a run_id so logs from both hosts of a pair
// can be correlated afterwards.
func NewLogger(level string) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}

	logger := zerolog.New(out).With().
		Timestamp().
		Str("run_id", uuid.New().String()[:8]).
		Logger()

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	return logger.Level(lvl)
}

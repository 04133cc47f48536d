// Package logger builds the process logger from the log settings.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// New returns a logger writing to w at the given level. format "json"
// writes one JSON object per line; anything else writes console output.
// Every line carries the run id so logs of one import can be grepped.
func New(w io.Writer, level, format, runID string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.ToLower(format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("run_id", runID).Logger()
}

// Setup returns a stderr logger tagged with a fresh run id.
func Setup(level, format string) zerolog.Logger {
	return New(os.Stderr, level, format, uuid.NewString())
}

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog builds the zerolog logger used by the database layer.
// Output goes to the console and, when extra is non-nil, to extra as well.
func NewZerolog(level string, extra io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	var w io.Writer = console
	if extra != nil {
		w = zerolog.MultiLevelWriter(console, extra)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

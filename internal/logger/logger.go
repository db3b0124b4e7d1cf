// Package logger builds the application zerolog.Logger from the Log config
// section. Handlers and services receive the logger by value; there is no
// package-level global.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New constructs a logger for the given level and format ("json" or
// "console"). Unknown levels fall back to info rather than failing startup.
func New(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

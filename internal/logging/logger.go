package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Environments recognised by New.
const (
	Development = "development"
	Production  = "production"
)

// New creates a configured application logger writing to Stderr
// (to separate it from the chat UI on Stdout).
func New(env, level string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, env, level)
}

// NewWithWriter is New with an explicit destination.
// Production logs are JSON; anything else gets a human-readable console writer.
// An empty level means debug in development and info in production.
func NewWithWriter(w io.Writer, env, level string) (zerolog.Logger, error) {
	env = strings.ToLower(strings.TrimSpace(env))

	lvl := zerolog.DebugLevel
	if env == Production {
		lvl = zerolog.InfoLevel
	}
	if level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	if env == Production {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
	}
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(console).Level(lvl).With().Timestamp().Logger(), nil
}

// Nop returns a no-op logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

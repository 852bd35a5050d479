package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Dev environments get a human-readable
// console writer, everything else emits JSON lines on stdout.
func New(appEnv, level string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(appEnv, "dev") || strings.EqualFold(appEnv, "local") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "cloudstore").Logger()
}

// Nop is handy for tests and for components constructed without a logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

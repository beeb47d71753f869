package utils

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// NewLogger builds the application logger. Logs go to the configured file when set, to stderr
// in headless mode, and nowhere otherwise so they cannot garble the interactive screen.
// The returned close function releases the log file and is always safe to call.
func NewLogger(config Config) (*slog.Logger, func() error, error) {
	var (
		out     io.Writer = io.Discard
		closeFn           = func() error { return nil }
	)
	switch {
	case config.LogFile != "":
		f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, errors.Wrapf(err, "[NewLogger] failed to open log file: %+v", config.LogFile)
		}
		out, closeFn = f, f.Close
	case config.Headless:
		out = os.Stderr
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)})
	return slog.New(handler), closeFn, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

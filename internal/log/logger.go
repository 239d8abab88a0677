package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	// ErrInvalidLevel is returned for an unknown log level name.
	ErrInvalidLevel = errors.New("invalid log level, valid levels: debug, info, warning, error")

	// ErrInvalidFormat is returned for an unknown log format.
	ErrInvalidFormat = errors.New("invalid log format, valid formats: text, json")
)

// ParseLevel converts a level name such as "INFO" or "warning" to a slog.Level.
// "critical" is accepted as an alias of error.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
}

// NewLogger creates a redacting logger writing to w.
// format is "text" or "json"; an empty format means text.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	return slog.New(NewRedactingHandler(handler)), nil
}

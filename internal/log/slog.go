// Package log builds the structured loggers used across the module.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelTrace is more verbose than slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// levelNone is above every level a record is logged at.
const levelNone = slog.Level(1 << 10)

// Formats accepted by Config.
const (
	FormatLogfmt = "logfmt"
	FormatJSON   = "json"
)

// Config selects the level and format of a logger.
type Config struct {
	// Level is one of TRACE, DEBUG, INFO, WARN, ERROR or NONE. Case
	// insensitive, empty means INFO.
	Level string

	// Format is FormatLogfmt (default) or FormatJSON.
	Format string

	// Fields are added to every record.
	Fields map[string]string
}

// ParseLevel parses a level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "NONE", "OFF":
		return levelNone, nil
	}
	return 0, fmt.Errorf("log level not recognised: %v", s)
}

// NewHandler creates a handler writing to w.
func NewHandler(w io.Writer, conf Config) (slog.Handler, error) {
	level, err := ParseLevel(conf.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: renameLevel,
	}

	var h slog.Handler
	switch conf.Format {
	case "", FormatLogfmt:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("log format not recognised: %v", conf.Format)
	}

	if len(conf.Fields) > 0 {
		attrs := make([]slog.Attr, 0, len(conf.Fields))
		for k, v := range conf.Fields {
			attrs = append(attrs, slog.String(k, v))
		}
		h = h.WithAttrs(attrs)
	}
	return h, nil
}

// New creates a logger writing to w.
func New(w io.Writer, conf Config) (*slog.Logger, error) {
	h, err := NewHandler(w, conf)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}

func renameLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if level, ok := a.Value.Any().(slog.Level); ok && level <= LevelTrace {
		return slog.String(slog.LevelKey, "TRACE")
	}
	return a
}

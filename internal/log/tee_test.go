package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Clear slog's time attribute for easier testing
var clearTimeAttr = func(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "time" {
		return slog.String("time", "")
	}
	return a
}

func TestTee(t *testing.T) {
	var infoBuf, errBuf bytes.Buffer
	info := slog.NewTextHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo, ReplaceAttr: clearTimeAttr})
	errs := slog.NewTextHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError, ReplaceAttr: clearTimeAttr})

	logger := slog.New(NewTee(info, errs)).With("service", "service-two")
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))

	logger.Debug("dropped")
	logger.Info("Listening", "address", ":3001")
	logger.WithGroup("req").Error("Downstream failed", "status", 502)

	assert.Equal(t,
		"time=\"\" level=INFO msg=Listening service=service-two address=:3001\n"+
			"time=\"\" level=ERROR msg=\"Downstream failed\" service=service-two req.status=502\n",
		infoBuf.String())
	assert.Equal(t,
		"time=\"\" level=ERROR msg=\"Downstream failed\" service=service-two req.status=502\n",
		errBuf.String())
}

// Package telemetry installs the process wide tracer provider that exports
// spans through the Arize exporter.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"

	"github.com/tracing-exp/genai-export/internal/impl/arize"
)

// Telemetry owns the global tracer provider.
type Telemetry struct {
	tp *sdktrace.TracerProvider

	shutdownOnce sync.Once
	shutdownErr  error
}

// Start creates a tracer provider from conf and registers it, along with the
// W3C trace context and baggage propagators, as the otel globals. Internal
// SDK diagnostics are written to log.
func Start(ctx context.Context, conf arize.ProviderConfig, log *slog.Logger) (*Telemetry, error) {
	if conf.Logger == nil {
		conf.Logger = log
	}

	otel.SetLogger(logr.FromSlogHandler(log.Handler()))
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Warn("OpenTelemetry error", "error", err)
	}))

	tp, err := arize.NewTracerProvider(ctx, conf)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return &Telemetry{tp: tp}, nil
}

// TracerProvider returns the registered provider.
func (t *Telemetry) TracerProvider() *sdktrace.TracerProvider {
	return t.tp
}

// Shutdown flushes pending spans and stops the provider. Calling it more than
// once returns the result of the first call.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		t.shutdownErr = multierr.Combine(
			t.tp.ForceFlush(ctx),
			t.tp.Shutdown(ctx),
		)
	})
	return t.shutdownErr
}

package arize

import (
	"context"
	"log/slog"
	"sync/atomic"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ResultCode describes the outcome of a batch export.
type ResultCode int

// Export result codes.
const (
	ResultSuccess ResultCode = iota
	ResultFailed
)

func (c ResultCode) String() string {
	switch c {
	case ResultSuccess:
		return "success"
	case ResultFailed:
		return "failed"
	}
	return "unknown"
}

// ResultCodeOf maps the error returned by an export to its result code.
func ResultCodeOf(err error) ResultCode {
	if err == nil {
		return ResultSuccess
	}
	return ResultFailed
}

// ExporterOpt customises an Exporter.
type ExporterOpt func(*Exporter)

// WithLogger sets the logger used for failed exports and the construction
// line. By default nothing is logged.
func WithLogger(l *slog.Logger) ExporterOpt {
	return func(e *Exporter) {
		e.log = l
	}
}

// WithMetrics sets the prometheus metrics the Exporter updates.
func WithMetrics(m *Metrics) ExporterOpt {
	return func(e *Exporter) {
		e.metrics = m
	}
}

// WithDestination describes where the underlying exporter sends spans. It is
// only used for logging, and credential presence is read from the headers.
func WithDestination(dest Destination) ExporterOpt {
	return func(e *Exporter) {
		e.dest = dest
		e.hasSpaceID = dest.Headers[HeaderSpaceID] != ""
		e.hasAPIKey = dest.Headers[HeaderAPIKey] != "" || dest.Headers[HeaderAuthorization] != ""
	}
}

// WithConfig is WithDestination for the resolved config. Credential presence
// is taken from the config itself rather than caller supplied headers, and
// the project name is recorded.
func WithConfig(conf Config) ExporterOpt {
	return func(e *Exporter) {
		e.dest = conf.Resolve()
		e.hasSpaceID = conf.SpaceID != ""
		e.hasAPIKey = conf.APIKey != ""
		e.projectName = conf.ProjectName
	}
}

// Exporter is a span exporter that converts the message payloads of
// OpenInference spans into the GenAI message schema before handing the batch
// to another exporter.
type Exporter struct {
	next    sdktrace.SpanExporter
	log     *slog.Logger
	metrics *Metrics

	dest        Destination
	hasSpaceID  bool
	hasAPIKey   bool
	projectName string

	exports atomic.Uint64
}

var _ sdktrace.SpanExporter = (*Exporter)(nil)

// NewExporter wraps next.
func NewExporter(next sdktrace.SpanExporter, opts ...ExporterOpt) *Exporter {
	e := &Exporter{
		next: next,
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.log.Info("Arize exporter initialized",
		"endpoint", e.dest.Endpoint,
		"has_space_id", e.hasSpaceID,
		"has_api_key", e.hasAPIKey,
		"project_name", e.projectName,
	)
	return e
}

// ExportSpans translates the batch and exports it with the underlying
// exporter. The error of the underlying exporter is returned unchanged.
func (e *Exporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	batch := spans
	var translated, fallbacks int
	for i, s := range spans {
		out, ok, fb := translateSpan(s)
		fallbacks += fb
		if !ok {
			continue
		}
		if translated == 0 {
			batch = make([]sdktrace.ReadOnlySpan, len(spans))
			copy(batch, spans)
		}
		batch[i] = out
		translated++
	}
	e.metrics.translated(translated, fallbacks)

	e.exports.Add(1)
	e.metrics.export(len(batch))

	err := e.next.ExportSpans(ctx, batch)
	if err != nil {
		e.metrics.exportFailed()
		e.log.Error("Failed to export spans",
			"export", e.exports.Load(),
			"code", int(ResultCodeOf(err)),
			"error", err,
			"span_count", len(batch),
		)
	}
	return err
}

// Shutdown shuts down the underlying exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}

// Exports returns the number of ExportSpans calls made so far.
func (e *Exporter) Exports() uint64 {
	return e.exports.Load()
}

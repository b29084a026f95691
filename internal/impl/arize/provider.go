package arize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/tracing-exp/genai-export/internal/openinference"
)

// DefaultProjectName is used when no project name is configured.
const DefaultProjectName = "tracing-exp"

// ProviderConfig describes a tracer provider exporting through an Exporter.
type ProviderConfig struct {
	Config
	Transport TransportConfig

	// ServiceName defaults to the project name.
	ServiceName string

	// Tags are added to the trace resource.
	Tags map[string]string

	// SamplingRatio of root spans to record, zero is treated as one.
	SamplingRatio float64

	// FlushInterval is the batch timeout of the span processor, zero uses the
	// SDK default.
	FlushInterval time.Duration

	Logger  *slog.Logger
	Metrics *Metrics
}

// NewResource returns the trace resource for the config.
func (c ProviderConfig) NewResource() *resource.Resource {
	project := c.ProjectName
	if project == "" {
		project = DefaultProjectName
	}
	service := c.ServiceName
	if service == "" {
		service = project
	}

	attrs := make([]attribute.KeyValue, 0, len(c.Tags)+2)
	for k, v := range c.Tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	// Explicit settings take precedence over tags.
	attrs = append(attrs,
		semconv.ServiceName(service),
		openinference.ProjectName.String(project),
	)
	return resource.NewWithAttributes(semconv.SchemaURL, attrs...)
}

// NewTracerProvider creates a tracer provider that batches spans into an
// Exporter sending to the configured collector.
func NewTracerProvider(ctx context.Context, conf ProviderConfig) (*sdktrace.TracerProvider, error) {
	ratio := conf.SamplingRatio
	if ratio == 0 {
		ratio = 1
	}
	if ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("sampling ratio must be between 0 and 1, got %v", ratio)
	}

	dest := conf.Resolve()

	otlpExp, err := NewOTLPExporter(ctx, dest, conf.Transport)
	if err != nil {
		return nil, err
	}

	opts := []ExporterOpt{WithConfig(conf.Config), WithMetrics(conf.Metrics)}
	if conf.Logger != nil {
		opts = append(opts, WithLogger(conf.Logger))
	}
	exp := NewExporter(otlpExp, opts...)

	var batchOpts []sdktrace.BatchSpanProcessorOption
	if conf.FlushInterval > 0 {
		batchOpts = append(batchOpts, sdktrace.WithBatchTimeout(conf.FlushInterval))
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, batchOpts...),
		sdktrace.WithResource(conf.NewResource()),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	), nil
}

package collector

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/tracing-exp/genai-export/internal/openinference"
)

// ForEachSpan calls fn for every span in traces along with the resource it
// belongs to.
func ForEachSpan(traces ptrace.Traces, fn func(res pcommon.Resource, span ptrace.Span)) {
	rss := traces.ResourceSpans()
	for i := 0; i < rss.Len(); i++ {
		rs := rss.At(i)
		sss := rs.ScopeSpans()
		for j := 0; j < sss.Len(); j++ {
			spans := sss.At(j).Spans()
			for k := 0; k < spans.Len(); k++ {
				fn(rs.Resource(), spans.At(k))
			}
		}
	}
}

// LogSpans returns a Handler that writes one log line per received span.
// The message payloads of AI spans are included.
func LogSpans(log *slog.Logger) Handler {
	return func(ctx context.Context, req Request) error {
		ForEachSpan(req.Traces, func(res pcommon.Resource, span ptrace.Span) {
			attrs := []any{
				"service", stringAttr(res.Attributes(), "service.name"),
				"project", stringAttr(res.Attributes(), string(openinference.ProjectName)),
				"trace_id", span.TraceID().String(),
				"span_id", span.SpanID().String(),
				"name", span.Name(),
			}
			if kind := stringAttr(span.Attributes(), string(openinference.SpanKind)); kind != "" {
				attrs = append(attrs,
					"span_kind", kind,
					"prompt", stringAttr(span.Attributes(), string(openinference.GenAIPrompt)),
					"completion", stringAttr(span.Attributes(), string(openinference.GenAICompletion)),
				)
			}
			log.InfoContext(ctx, "Received span", attrs...)
		})
		return nil
	}
}

func stringAttr(m pcommon.Map, key string) string {
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return v.AsString()
}

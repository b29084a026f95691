package openinference

import (
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// HasSpanKind returns true if attrs contain a non-empty string SpanKind. The
// value itself is not checked against the known span kinds.
func HasSpanKind(attrs []attribute.KeyValue) bool {
	for _, kv := range attrs {
		if kv.Key != SpanKind {
			continue
		}
		return kv.Value.Type() == attribute.STRING && kv.Value.AsString() != ""
	}
	return false
}

// IsOpenInferenceSpan returns true if the span was recorded by OpenInference
// instrumentation.
func IsOpenInferenceSpan(span sdktrace.ReadOnlySpan) bool {
	if span == nil {
		return false
	}
	return HasSpanKind(span.Attributes())
}

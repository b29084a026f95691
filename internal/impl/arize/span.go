package arize

import (
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tracing-exp/genai-export/internal/genai"
	"github.com/tracing-exp/genai-export/internal/openinference"
)

// translatedSpan presents a span with a rewritten attribute set. Everything
// else, including the span context, is read from the wrapped span.
type translatedSpan struct {
	sdktrace.ReadOnlySpan
	attrs []attribute.KeyValue
}

func (s translatedSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}

// translateAttributes converts the message payloads of an AI span into the
// GenAI message schema. The returned slice has the same keys in the same
// order as attrs. Fallbacks counts payloads that were left untouched because
// they could not be converted, and changed reports whether any value
// differs from the input.
func translateAttributes(attrs []attribute.KeyValue) (out []attribute.KeyValue, changed bool, fallbacks int) {
	for i, kv := range attrs {
		if kv.Key != openinference.GenAIPrompt && kv.Key != openinference.GenAICompletion {
			continue
		}
		if kv.Value.Type() != attribute.STRING {
			continue
		}

		src := kv.Value.AsString()
		converted, err := genai.TryConvertMastraMessages(src)
		if err != nil {
			fallbacks++
			continue
		}
		if converted == src {
			continue
		}

		if out == nil {
			out = make([]attribute.KeyValue, len(attrs))
			copy(out, attrs)
		}
		out[i] = kv.Key.String(converted)
		changed = true
	}
	if out == nil {
		out = attrs
	}
	return out, changed, fallbacks
}

// translateSpan returns the span to forward for s. Spans without
// OpenInference attributes, and AI spans with nothing to convert, are
// returned as is.
func translateSpan(s sdktrace.ReadOnlySpan) (span sdktrace.ReadOnlySpan, translated bool, fallbacks int) {
	if !openinference.IsOpenInferenceSpan(s) {
		return s, false, 0
	}
	attrs, changed, fallbacks := translateAttributes(s.Attributes())
	if !changed {
		return s, false, fallbacks
	}
	return translatedSpan{ReadOnlySpan: s, attrs: attrs}, true, fallbacks
}

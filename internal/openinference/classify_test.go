package openinference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestIsOpenInferenceSpan(t *testing.T) {
	tests := []struct {
		name  string
		attrs []attribute.KeyValue
		want  bool
	}{
		{
			name:  "known span kind",
			attrs: []attribute.KeyValue{SpanKind.String(SpanKindLLM)},
			want:  true,
		},
		{
			name:  "any string span kind",
			attrs: []attribute.KeyValue{attribute.String("http.method", "GET"), SpanKind.String("something-new")},
			want:  true,
		},
		{
			name:  "empty span kind",
			attrs: []attribute.KeyValue{SpanKind.String("")},
			want:  false,
		},
		{
			name:  "no attributes",
			attrs: nil,
			want:  false,
		},
		{
			name:  "missing span kind",
			attrs: []attribute.KeyValue{GenAIPrompt.String(`{"text":"hi"}`)},
			want:  false,
		},
		{
			name:  "int span kind",
			attrs: []attribute.KeyValue{SpanKind.Int(1)},
			want:  false,
		},
		{
			name:  "bool span kind",
			attrs: []attribute.KeyValue{SpanKind.Bool(true)},
			want:  false,
		},
		{
			name:  "string slice span kind",
			attrs: []attribute.KeyValue{SpanKind.StringSlice([]string{SpanKindLLM})},
			want:  false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, HasSpanKind(test.attrs))

			span := tracetest.SpanStub{Name: "span", Attributes: test.attrs}.Snapshot()
			assert.Equal(t, test.want, IsOpenInferenceSpan(span))
		})
	}
}

func TestIsOpenInferenceSpanNil(t *testing.T) {
	assert.False(t, IsOpenInferenceSpan(nil))
}

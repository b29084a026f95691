package arize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tracing-exp/genai-export/internal/openinference"
)

func TestTranslateAttributes(t *testing.T) {
	tests := []struct {
		name          string
		attrs         []attribute.KeyValue
		want          []attribute.KeyValue
		wantChanged   bool
		wantFallbacks int
	}{
		{
			name: "prompt and completion",
			attrs: []attribute.KeyValue{
				openinference.GenAIPrompt.String(`{"text":"a"}`),
				attribute.Int("tokens", 3),
				openinference.GenAICompletion.String(`{"text":"b"}`),
			},
			want: []attribute.KeyValue{
				openinference.GenAIPrompt.String(`[{"role":"assistant","parts":[{"type":"text","content":"a"}]}]`),
				attribute.Int("tokens", 3),
				openinference.GenAICompletion.String(`[{"role":"assistant","parts":[{"type":"text","content":"b"}]}]`),
			},
			wantChanged: true,
		},
		{
			name: "non string payload",
			attrs: []attribute.KeyValue{
				openinference.GenAIPrompt.StringSlice([]string{`{"text":"a"}`}),
			},
			want: []attribute.KeyValue{
				openinference.GenAIPrompt.StringSlice([]string{`{"text":"a"}`}),
			},
		},
		{
			name: "unconvertible payloads",
			attrs: []attribute.KeyValue{
				openinference.GenAIPrompt.String("hello"),
				openinference.GenAICompletion.String(`{"other":1}`),
			},
			want: []attribute.KeyValue{
				openinference.GenAIPrompt.String("hello"),
				openinference.GenAICompletion.String(`{"other":1}`),
			},
			wantFallbacks: 2,
		},
		{
			name: "other keys ignored",
			attrs: []attribute.KeyValue{
				attribute.String("gen_ai.input.messages", `{"text":"a"}`),
			},
			want: []attribute.KeyValue{
				attribute.String("gen_ai.input.messages", `{"text":"a"}`),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			input := append([]attribute.KeyValue(nil), test.attrs...)

			got, changed, fallbacks := translateAttributes(test.attrs)
			assert.Equal(t, test.want, got)
			assert.Equal(t, test.wantChanged, changed)
			assert.Equal(t, test.wantFallbacks, fallbacks)
			assert.Equal(t, input, test.attrs)
		})
	}
}

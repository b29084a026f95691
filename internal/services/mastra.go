package services

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tracing-exp/genai-export/internal/openinference"
)

const (
	mastraAgentName = "clock-agent"
	mastraToolName  = "current-time"
	mastraReply     = "service-mastra response"
	defaultQuestion = "What time is it?"
)

type mastraPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
}

type mastraMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type mastraMessages struct {
	Messages []mastraMessage `json:"messages"`
}

// mastraHandler answers with a static message after recording the spans an
// agent run would produce: an AGENT span holding the conversation in the
// Mastra message format, and a TOOL span for the tool it called.
func mastraHandler(tracer trace.Tracer, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		question := r.URL.Query().Get("q")
		if question == "" {
			question = defaultQuestion
		}

		ctx, agentSpan := tracer.Start(r.Context(), "agent run: "+mastraAgentName,
			trace.WithAttributes(
				openinference.SpanKind.String(openinference.SpanKindAgent),
				attribute.String("agent.name", mastraAgentName),
			))

		callID := uuid.NewString()
		now := time.Now().UTC().Format(time.RFC3339)

		_, toolSpan := tracer.Start(ctx, "tool call: "+mastraToolName,
			trace.WithAttributes(
				openinference.SpanKind.String(openinference.SpanKindTool),
				attribute.String("tool.name", mastraToolName),
				attribute.String("tool.call.id", callID),
			))
		toolSpan.End()

		prompt, err := json.Marshal(mastraMessages{Messages: []mastraMessage{
			{Role: "system", Content: "You tell the time."},
			{Role: "user", Content: question},
		}})
		if err == nil {
			agentSpan.SetAttributes(openinference.GenAIPrompt.String(string(prompt)))
		}

		completion, err := json.Marshal(mastraMessages{Messages: []mastraMessage{
			{Role: "assistant", Content: []mastraPart{
				{Type: "tool-call", ToolCallID: callID, ToolName: mastraToolName, Input: map[string]any{"timezone": "UTC"}},
			}},
			{Role: "tool", Content: []mastraPart{
				{Type: "tool-result", ToolCallID: callID, ToolName: mastraToolName, Output: map[string]any{"value": now}},
			}},
			{Role: "assistant", Content: []mastraPart{
				{Type: "text", Text: "It is " + now + "."},
			}},
		}})
		if err == nil {
			agentSpan.SetAttributes(openinference.GenAICompletion.String(string(completion)))
		}
		agentSpan.SetStatus(codes.Ok, "")
		agentSpan.End()

		log.Debug("Agent run recorded", "trace_id", agentSpan.SpanContext().TraceID().String())
		writeJSON(w, http.StatusOK, Message{Message: mastraReply})
	})
}

// Package genai models the OpenTelemetry GenAI chat message schema used by the
// gen_ai.input.messages and gen_ai.output.messages attributes, and converts
// agent framework payloads into it.
//
// See https://opentelemetry.io/docs/specs/semconv/gen-ai/gen-ai-input-messages.json
// and https://opentelemetry.io/docs/specs/semconv/gen-ai/gen-ai-output-messages.json
package genai

import (
	"encoding/json"
)

// Part type discriminators of the GenAI message schema.
const (
	PartTypeText             = "text"
	PartTypeToolCall         = "tool_call"
	PartTypeToolCallResponse = "tool_call_response"
)

// RoleAssistant is the role given to free text results.
const RoleAssistant = "assistant"

// Message is a single GenAI chat message. Part order is significant.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one element of a Message. The concrete types are TextPart,
// ToolCallPart, ToolCallResponsePart and RawPart.
type Part interface {
	json.Marshaler
	partType() string
}

// TextPart carries plain text content. Raw, when set, is written as the
// content instead of Content; it holds text values that are not JSON strings.
type TextPart struct {
	Content string
	Raw     json.RawMessage
}

func (TextPart) partType() string { return PartTypeText }

// MarshalJSON encodes the part with its type discriminator.
func (p TextPart) MarshalJSON() ([]byte, error) {
	var content any = p.Content
	if p.Raw != nil {
		content = p.Raw
	}
	return marshalNoEscape(struct {
		Type    string `json:"type"`
		Content any    `json:"content"`
	}{PartTypeText, content})
}

// ToolCallPart is a request from the model to invoke a tool. Arguments holds
// the JSON encoded tool input.
type ToolCallPart struct {
	ID        string
	Name      string
	Arguments string
}

func (ToolCallPart) partType() string { return PartTypeToolCall }

// MarshalJSON encodes the part with its type discriminator.
func (p ToolCallPart) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Type      string `json:"type"`
		ID        string `json:"id"`
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	}{PartTypeToolCall, p.ID, p.Name, p.Arguments})
}

// ToolCallResponsePart is the result of a tool invocation. Response holds the
// JSON encoded tool output.
type ToolCallResponsePart struct {
	ID       string
	Name     string
	Response string
}

func (ToolCallResponsePart) partType() string { return PartTypeToolCallResponse }

// MarshalJSON encodes the part with its type discriminator.
func (p ToolCallResponsePart) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Type     string `json:"type"`
		ID       string `json:"id"`
		Name     string `json:"name"`
		Response string `json:"response"`
	}{PartTypeToolCallResponse, p.ID, p.Name, p.Response})
}

// RawPart is a source part of a type the converter does not recognise. It is
// written back out with the same keys, order and values, compacted.
type RawPart json.RawMessage

func (RawPart) partType() string { return "" }

// MarshalJSON returns the raw part.
func (p RawPart) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

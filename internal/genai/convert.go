package genai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotJSONObject is returned when a payload does not parse as a JSON
	// object.
	ErrNotJSONObject = errors.New("payload is not a JSON object")

	// ErrUnrecognisedShape is returned when a payload is a JSON object but has
	// neither a text field nor a messages array.
	ErrUnrecognisedShape = errors.New("payload has neither a text field nor a messages array")
)

// ConvertMastraMessages converts a JSON payload holding Mastra messages into a
// JSON array of GenAI messages. Two payload shapes are recognised:
//
//	{"text": "..."}
//	{"messages": [{"role": "...", "content": "..." | [...]}]}
//
// A text payload becomes a single assistant message whatever the type of its
// text value. Elements of a messages array that don't look like Mastra
// messages are copied into the result compacted but otherwise unchanged, while
// their siblings are still converted.
//
// The conversion is best effort. Whenever the payload does not match either
// shape the original payload is returned unmodified.
func ConvertMastraMessages(payload string) string {
	out, _ := TryConvertMastraMessages(payload)
	return out
}

// TryConvertMastraMessages behaves like ConvertMastraMessages but also returns
// the reason the conversion fell back to the original payload. The returned
// string is always usable, when err is non-nil it is the payload itself.
func TryConvertMastraMessages(payload string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = payload, fmt.Errorf("conversion panicked: %v", r)
		}
	}()

	top, err := decodeObject(json.RawMessage(payload))
	if err != nil {
		return payload, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}

	if rawText, exists := top["text"]; exists {
		part := TextPart{Raw: rawText}
		if kindOf(rawText) == '"' {
			if err := json.Unmarshal(rawText, &part.Content); err != nil {
				return payload, err
			}
			part.Raw = nil
		}
		return encode([]Message{{
			Role:  RoleAssistant,
			Parts: []Part{part},
		}}, payload)
	}

	rawMessages, exists := top["messages"]
	if !exists || kindOf(rawMessages) != '[' {
		return payload, ErrUnrecognisedShape
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(rawMessages, &elems); err != nil {
		return payload, err
	}

	converted := make([]any, 0, len(elems))
	for _, elem := range elems {
		msg, err := decodeMastraMessage(elem)
		if err != nil {
			converted = append(converted, elem)
			continue
		}
		converted = append(converted, msg)
	}
	return encode(converted, payload)
}

func encode(v any, fallback string) (string, error) {
	b, err := marshalNoEscape(v)
	if err != nil {
		return fallback, err
	}
	return string(b), nil
}

// marshalNoEscape is json.Marshal without the HTML escaping of <, > and &.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(strings.TrimSuffix(buf.String(), "\n")), nil
}

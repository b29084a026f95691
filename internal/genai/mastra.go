package genai

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Mastra content part tags.
const (
	mastraPartText       = "text"
	mastraPartToolCall   = "tool-call"
	mastraPartToolResult = "tool-result"
)

var (
	errNotObject    = errors.New("not a JSON object")
	errMissingField = errors.New("missing field")
	errWrongType    = errors.New("wrong field type")
)

// fields is a decoded JSON object with its values left undecoded. Keys are
// matched exactly.
type fields map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (fields, error) {
	if kindOf(raw) != '{' {
		return nil, errNotObject
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func (f fields) raw(key string) (json.RawMessage, error) {
	v, exists := f[key]
	if !exists {
		return nil, fmt.Errorf("%w: %v", errMissingField, key)
	}
	return v, nil
}

func (f fields) str(key string) (string, error) {
	v, err := f.raw(key)
	if err != nil {
		return "", err
	}
	if kindOf(v) != '"' {
		return "", fmt.Errorf("%w: %v is not a string", errWrongType, key)
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", err
	}
	return s, nil
}

// kindOf returns the first significant byte of a JSON value, which identifies
// its kind: '{', '[', '"', 'n', 't', 'f' or a number.
func kindOf(raw []byte) byte {
	raw = bytes.TrimLeft(raw, " \t\r\n")
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func compactJSON(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

//------------------------------------------------------------------------------

// decodeMastraMessage converts a single Mastra message of the form
// {"role": string, "content": string | [part]} into a GenAI message. An error
// means the element does not have the Mastra shape and must be kept as is.
func decodeMastraMessage(raw json.RawMessage) (Message, error) {
	f, err := decodeObject(raw)
	if err != nil {
		return Message{}, err
	}

	role, err := f.str("role")
	if err != nil {
		return Message{}, err
	}

	content, err := f.raw("content")
	if err != nil {
		return Message{}, err
	}

	switch kindOf(content) {
	case '"':
		var text string
		if err := json.Unmarshal(content, &text); err != nil {
			return Message{}, err
		}
		return Message{Role: role, Parts: []Part{TextPart{Content: text}}}, nil
	case '[':
		var rawParts []json.RawMessage
		if err := json.Unmarshal(content, &rawParts); err != nil {
			return Message{}, err
		}
		parts := make([]Part, 0, len(rawParts))
		for i, rp := range rawParts {
			p, err := decodeMastraPart(rp)
			if err != nil {
				return Message{}, fmt.Errorf("content part %v: %w", i, err)
			}
			parts = append(parts, p)
		}
		return Message{Role: role, Parts: parts}, nil
	}
	return Message{}, fmt.Errorf("%w: content is neither a string nor an array", errWrongType)
}

// decodeMastraPart maps a tagged Mastra content part onto its GenAI
// counterpart. Parts with a tag we don't recognise are carried over verbatim.
func decodeMastraPart(raw json.RawMessage) (Part, error) {
	f, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	tag, err := f.str("type")
	if err != nil {
		return nil, err
	}

	switch tag {
	case mastraPartText:
		text, err := f.str("text")
		if err != nil {
			return nil, err
		}
		return TextPart{Content: text}, nil

	case mastraPartToolCall:
		id, name, err := toolIdentity(f)
		if err != nil {
			return nil, err
		}
		input, err := f.raw("input")
		if err != nil {
			return nil, err
		}
		args, err := compactJSON(input)
		if err != nil {
			return nil, err
		}
		return ToolCallPart{ID: id, Name: name, Arguments: args}, nil

	case mastraPartToolResult:
		id, name, err := toolIdentity(f)
		if err != nil {
			return nil, err
		}
		output, err := f.raw("output")
		if err != nil {
			return nil, err
		}
		of, err := decodeObject(output)
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		value, exists := of["value"]
		if !exists {
			value = json.RawMessage("null")
		}
		resp, err := compactJSON(value)
		if err != nil {
			return nil, err
		}
		return ToolCallResponsePart{ID: id, Name: name, Response: resp}, nil
	}
	return RawPart(raw), nil
}

func toolIdentity(f fields) (id, name string, err error) {
	if id, err = f.str("toolCallId"); err != nil {
		return
	}
	name, err = f.str("toolName")
	return
}

package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResponseShape names the top-level layouts accepted from the model.
type ResponseShape int

const (
	ShapeUnknown ResponseShape = iota
	// ShapeArray is a bare array of records.
	ShapeArray
	// ShapeWrapped is an object whose "transactions" member is an array.
	ShapeWrapped
	// ShapeFirstKey is an object whose first member, in document order, is an array.
	ShapeFirstKey
)

func (s ResponseShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeWrapped:
		return "wrapped"
	case ShapeFirstKey:
		return "first_key"
	default:
		return "unknown"
	}
}

// DecodedResponse is the result of classifying a model reply.
type DecodedResponse struct {
	Shape   ResponseShape
	Records []json.RawMessage
}

// DecodeResponse classifies sanitized model output into one of the accepted
// shapes. Any other JSON, or invalid JSON, is an error and yields no records.
func DecodeResponse(clean string) (DecodedResponse, error) {
	data := []byte(clean)
	if !json.Valid(data) {
		return DecodedResponse{}, fmt.Errorf("DecodeResponse: invalid JSON")
	}

	if arr, ok := asArray(data); ok {
		return DecodedResponse{Shape: ShapeArray, Records: arr}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return DecodedResponse{}, fmt.Errorf("DecodeResponse: %w", ErrUnrecognizedShape)
	}

	if raw, ok := obj["transactions"]; ok {
		if arr, ok := asArray(raw); ok {
			return DecodedResponse{Shape: ShapeWrapped, Records: arr}, nil
		}
	}

	first, err := firstMember(data)
	if err != nil {
		return DecodedResponse{}, fmt.Errorf("DecodeResponse: %w", err)
	}
	if arr, ok := asArray(first); ok {
		return DecodedResponse{Shape: ShapeFirstKey, Records: arr}, nil
	}

	return DecodedResponse{}, fmt.Errorf("DecodeResponse: %w", ErrUnrecognizedShape)
}

// asArray decodes raw only if it is a JSON array; null does not count.
func asArray(raw []byte) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// firstMember returns the value of the first member of a JSON object as it
// appears in the input. Go maps do not keep order, so this walks the tokens.
func firstMember(data []byte) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // {
		return nil, err
	}
	if !dec.More() {
		return nil, ErrUnrecognizedShape
	}
	if _, err := dec.Token(); err != nil { // key
		return nil, err
	}
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

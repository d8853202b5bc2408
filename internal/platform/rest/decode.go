package rest

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// ErrUnexpectedShape is returned when a payload decodes to a different JSON kind than the caller expects.
var ErrUnexpectedShape = errors.New("unexpected payload shape")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeArray decodes a JSON array without reshaping its elements.
func DecodeArray(body []byte) ([]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("decode array: got %T: %w", v, ErrUnexpectedShape)
	}
	return arr, nil
}

// DecodeObject decodes a JSON object without reshaping its fields.
func DecodeObject(body []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode object: got %T: %w", v, ErrUnexpectedShape)
	}
	return obj, nil
}

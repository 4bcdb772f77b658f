package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/amk/internal/ir"
)

// marshalModel converts a model to JSON TEXT for storage.
// Uses json.Encoder with HTML escaping disabled so Maple operators such as
// "->" and "<" are stored as written.
func marshalModel(m *ir.Model) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("marshal model: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalModel parses JSON TEXT to a model.
func unmarshalModel(data string) (*ir.Model, error) {
	var m ir.Model
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal model: %w", err)
	}
	return &m, nil
}

// Package schema validates user data against the data contract the
// discovery collaborator publishes for each wizard. The schema is a
// JSON-Schema-like document: an object with required properties and
// per-property type/pattern/enum/range constraints. Validation is the
// gate in front of the browser - no session is created until the data
// passes.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
)

// Schema describes the shape user data must satisfy for one wizard.
type Schema struct {
	Title      string              `json:"title,omitempty"`
	Type       string              `json:"type"`
	Required   []string            `json:"required,omitempty"`
	Properties map[string]Property `json:"properties"`
}

// Property describes the constraints on a single user-data field.
// Array properties (repeatable field groups) carry an Items schema
// describing each sub-record.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Pattern     string              `json:"pattern,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	MinItems    *int                `json:"minItems,omitempty"`
	MaxItems    *int                `json:"maxItems,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Required    []string            `json:"required,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Examples    []any               `json:"examples,omitempty"`
}

// Parse decodes a schema document from JSON bytes.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	if s.Type != "" && s.Type != "object" {
		return nil, fmt.Errorf("unsupported schema type %q (expected object)", s.Type)
	}
	return &s, nil
}

// Load reads and parses a schema document from disk.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Parse(data)
}

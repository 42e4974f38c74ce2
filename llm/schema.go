// Copyright 2025 Itinera
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"encoding/json"
	"fmt"
)

// Schema is a JSON-schema definition expressed as data. The same value is
// serialized into the outbound provider request (to constrain generation)
// and used to validate the inbound document (to reject malformed output at
// the boundary), so the contract is defined exactly once.
type Schema struct {
	Type                 string             `json:"type"`
	Description          string             `json:"description,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	MaxLength            int                `json:"maxLength,omitempty"`
	MinItems             int                `json:"minItems,omitempty"`
	MaxItems             int                `json:"maxItems,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
}

// SchemaViolation is returned when a document does not conform to a Schema.
type SchemaViolation struct {
	Path    string
	Message string
}

func (e *SchemaViolation) Error() string {
	if e.Path == "" {
		return "schema violation: " + e.Message
	}
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Message)
}

// Float returns a pointer to f, for Minimum/Maximum fields.
func Float(f float64) *float64 { return &f }

// NoExtraProps is the AdditionalProperties value that forbids unknown keys.
// Object schemas sent to a model should always set it so the model cannot
// smuggle extra fields past validation.
func NoExtraProps() *bool {
	v := false
	return &v
}

// ValidateJSON decodes raw JSON and validates it against the schema.
// Returns the decoded document on success.
func (s *Schema) ValidateJSON(raw []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Validate checks a decoded JSON document against the schema.
func (s *Schema) Validate(doc any) error {
	return s.validate(doc, "$")
}

func (s *Schema) validate(doc any, path string) error {
	switch s.Type {
	case "object":
		m, ok := doc.(map[string]any)
		if !ok {
			return &SchemaViolation{Path: path, Message: "expected object"}
		}
		for _, req := range s.Required {
			if _, ok := m[req]; !ok {
				return &SchemaViolation{Path: path, Message: "missing required property " + req}
			}
		}
		for key, val := range m {
			prop, known := s.Properties[key]
			if !known {
				if s.AdditionalProperties != nil && !*s.AdditionalProperties {
					return &SchemaViolation{Path: path, Message: "unexpected property " + key}
				}
				continue
			}
			// null satisfies optional properties
			if val == nil {
				continue
			}
			if err := prop.validate(val, path+"."+key); err != nil {
				return err
			}
		}
		return nil

	case "array":
		arr, ok := doc.([]any)
		if !ok {
			return &SchemaViolation{Path: path, Message: "expected array"}
		}
		if s.MinItems > 0 && len(arr) < s.MinItems {
			return &SchemaViolation{Path: path, Message: fmt.Sprintf("fewer than %d items", s.MinItems)}
		}
		if s.MaxItems > 0 && len(arr) > s.MaxItems {
			return &SchemaViolation{Path: path, Message: fmt.Sprintf("more than %d items", s.MaxItems)}
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}
		return nil

	case "string":
		str, ok := doc.(string)
		if !ok {
			return &SchemaViolation{Path: path, Message: "expected string"}
		}
		if s.MaxLength > 0 && len([]rune(str)) > s.MaxLength {
			return &SchemaViolation{Path: path, Message: fmt.Sprintf("longer than %d characters", s.MaxLength)}
		}
		if len(s.Enum) > 0 {
			for _, allowed := range s.Enum {
				if str == allowed {
					return nil
				}
			}
			return &SchemaViolation{Path: path, Message: "value not in enum: " + str}
		}
		return nil

	case "number", "integer":
		n, ok := doc.(float64)
		if !ok {
			return &SchemaViolation{Path: path, Message: "expected number"}
		}
		if s.Type == "integer" && n != float64(int64(n)) {
			return &SchemaViolation{Path: path, Message: "expected integer"}
		}
		if s.Minimum != nil && n < *s.Minimum {
			return &SchemaViolation{Path: path, Message: fmt.Sprintf("below minimum %g", *s.Minimum)}
		}
		if s.Maximum != nil && n > *s.Maximum {
			return &SchemaViolation{Path: path, Message: fmt.Sprintf("above maximum %g", *s.Maximum)}
		}
		return nil

	case "boolean":
		if _, ok := doc.(bool); !ok {
			return &SchemaViolation{Path: path, Message: "expected boolean"}
		}
		return nil

	default:
		return &SchemaViolation{Path: path, Message: "unsupported schema type " + s.Type}
	}
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return &Schema{
		Type:     "object",
		Required: []string{"id", "score"},
		Properties: map[string]*Schema{
			"id":    {Type: "string"},
			"score": {Type: "number", Minimum: Float(0), Maximum: Float(1)},
			"tags": {
				Type:     "array",
				Items:    &Schema{Type: "string"},
				MinItems: 1,
				MaxItems: 3,
			},
			"kind":   {Type: "string", Enum: []string{"flight", "hotel"}},
			"count":  {Type: "integer"},
			"active": {Type: "boolean"},
		},
		AdditionalProperties: NoExtraProps(),
	}
}

// =============================================================================
// ValidateJSON Tests
// =============================================================================

func TestValidateJSON_Valid(t *testing.T) {
	doc, err := testSchema().ValidateJSON([]byte(`{
		"id": "abc",
		"score": 0.5,
		"tags": ["one", "two"],
		"kind": "flight",
		"count": 3,
		"active": true
	}`))

	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestValidateJSON_InvalidJSON(t *testing.T) {
	_, err := testSchema().ValidateJSON([]byte(`{"id": `))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestValidateJSON_MissingRequired(t *testing.T) {
	_, err := testSchema().ValidateJSON([]byte(`{"id": "abc"}`))

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Message, "missing required property score")
}

func TestValidateJSON_UnexpectedProperty(t *testing.T) {
	_, err := testSchema().ValidateJSON([]byte(`{"id": "abc", "score": 0.5, "extra": 1}`))

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Message, "unexpected property extra")
}

func TestValidateJSON_AllowsUnknownWithoutNoExtraProps(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = nil

	_, err := schema.ValidateJSON([]byte(`{"id": "abc", "score": 0.5, "extra": 1}`))
	assert.NoError(t, err)
}

// =============================================================================
// Type and Constraint Tests
// =============================================================================

func TestValidate_ScoreBounds(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		valid bool
	}{
		{"lower bound", 0.0, true},
		{"upper bound", 1.0, true},
		{"below minimum", -0.1, false},
		{"above maximum", 1.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := testSchema().Validate(map[string]any{"id": "x", "score": tt.score})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EnumRejectsUnknownValue(t *testing.T) {
	err := testSchema().Validate(map[string]any{"id": "x", "score": 0.5, "kind": "venue"})

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Message, "not in enum")
}

func TestValidate_IntegerRejectsFraction(t *testing.T) {
	err := testSchema().Validate(map[string]any{"id": "x", "score": 0.5, "count": 1.5})

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Contains(t, violation.Message, "expected integer")
}

func TestValidate_ArrayItemBounds(t *testing.T) {
	schema := testSchema()

	err := schema.Validate(map[string]any{"id": "x", "score": 0.5, "tags": []any{}})
	assert.Error(t, err, "empty array violates minItems")

	err = schema.Validate(map[string]any{"id": "x", "score": 0.5, "tags": []any{"a", "b", "c", "d"}})
	assert.Error(t, err, "four items violate maxItems")

	err = schema.Validate(map[string]any{"id": "x", "score": 0.5, "tags": []any{"a", 1.0}})
	assert.Error(t, err, "non-string item rejected")
}

func TestValidate_WrongTypes(t *testing.T) {
	schema := testSchema()

	assert.Error(t, schema.Validate([]any{"not", "an", "object"}))
	assert.Error(t, schema.Validate(map[string]any{"id": 7.0, "score": 0.5}))
	assert.Error(t, schema.Validate(map[string]any{"id": "x", "score": "high"}))
	assert.Error(t, schema.Validate(map[string]any{"id": "x", "score": 0.5, "active": "yes"}))
}

func TestValidate_NullSatisfiesOptionalProperty(t *testing.T) {
	err := testSchema().Validate(map[string]any{"id": "x", "score": 0.5, "kind": nil})
	assert.NoError(t, err)
}

func TestValidate_ViolationPathPointsAtNestedField(t *testing.T) {
	schema := &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"items": {
				Type: "array",
				Items: &Schema{
					Type:       "object",
					Required:   []string{"id"},
					Properties: map[string]*Schema{"id": {Type: "string"}},
				},
			},
		},
	}

	err := schema.Validate(map[string]any{
		"items": []any{
			map[string]any{"id": "ok"},
			map[string]any{},
		},
	})

	var violation *SchemaViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "$.items[1]", violation.Path)
}

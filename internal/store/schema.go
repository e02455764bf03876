package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildOrderJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the persisted order payload. Validation findings
// downgrade to warnings: storage is an audit trail, not a gate.
func BuildOrderJSONSchema() map[string]any {
	dateProp := map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":             map[string]any{"type": "string", "minLength": 1},
			"order_number":   map[string]any{"type": "string"},
			"order_date":     dateProp,
			"delivery_date":  dateProp,
			"delivery_time":  map[string]any{"type": "string", "pattern": `^\d{2}:\d{2}$`},
			"delivery_place": map[string]any{"type": "string"},
			"supplier": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":    map[string]any{"type": "string"},
					"address": map[string]any{"type": "string"},
					"code":    map[string]any{"type": "string"},
				},
			},
			"items": map[string]any{
				"type": []string{"array", "null"},
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"position":    map[string]any{"type": "string", "pattern": `^\d{4}$`},
						"name":        map[string]any{"type": "string", "minLength": 1},
						"quantity":    map[string]any{"type": "integer", "minimum": 0},
						"unit":        map[string]any{"type": "string", "enum": []string{"szt", "kg", "l", "m", "op"}},
						"unit_price":  map[string]any{"type": "number"},
						"total_price": map[string]any{"type": "number"},
					},
					"required": []string{"position", "name", "quantity", "unit"},
				},
			},
			"total_value": map[string]any{"type": "number"},
		},
		"required": []string{"id", "items"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

package ai

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// EnabledColumns filters the column set down to the ones the matrix should
// include, preserving order.
func EnabledColumns(columns []MatrixColumn) []MatrixColumn {
	out := make([]MatrixColumn, 0, len(columns))
	for _, c := range columns {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// BuildMatrixSchema returns a JSON-Schema map describing one matrix row: an
// object with one string property per enabled column, all required. The same
// schema is sent to the model and used locally to validate the reply.
func BuildMatrixSchema(columns []MatrixColumn) map[string]any {
	props := make(map[string]any, len(columns))
	required := make([]string, 0, len(columns))
	for _, col := range columns {
		props[col.ID] = map[string]any{"type": "string", "description": col.Prompt}
		required = append(required, col.ID)
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// validateRows checks every decoded row against the row schema.
func validateRows(rowSchema map[string]any, rows []MatrixRow) error {
	b, err := json.Marshal(rowSchema)
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
	for i, row := range rows {
		if err := schema.Validate(map[string]any(row)); err != nil {
			return fmt.Errorf("row %d does not match schema: %w", i, err)
		}
	}
	return nil
}

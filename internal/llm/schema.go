package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema describes one transaction record as the model is
// asked to return it. Only amount is required; everything else is coerced
// leniently afterwards.
func BuildRecordJSONSchema() map[string]any {
	str := map[string]any{"type": []any{"string", "null"}}
	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"date":        str,
			"description": str,
			"merchant":    str,
			"amount":      map[string]any{"type": []any{"number", "string"}},
			"direction":   str,
			"type":        str,
			"category":    str,
		},
		"required": []any{"amount"},
	}
}

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
	recordSchemaErr  error
)

func compiledRecordSchema() (*jsonschema.Schema, error) {
	recordSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildRecordJSONSchema())
		if err != nil {
			recordSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
			recordSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		recordSchema, recordSchemaErr = compiler.Compile("record.json")
	})
	return recordSchema, recordSchemaErr
}

// ValidateRecord checks a decoded record against the record schema.
func ValidateRecord(v any) error {
	schema, err := compiledRecordSchema()
	if err != nil {
		return fmt.Errorf("ValidateRecord: compile schema: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("ValidateRecord: record does not match schema: %w", err)
	}
	return nil
}

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator validates QualificationReport values against a compiled
// JSON Schema document.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the schema file at schemaPath.
func NewValidator(schemaPath string) (*Validator, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("report: read schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("report: add schema resource: %w", err)
	}

	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("report: compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate marshals r to JSON and checks it against the compiled schema.
func (v *Validator) Validate(r *QualificationReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal report: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("report: unmarshal report: %w", err)
	}

	if err := v.schema.Validate(instance); err != nil {
		return fmt.Errorf("report: schema validation failed: %w", err)
	}

	return nil
}

package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/trackshelf/trackshelf-backend/internal/shelf/domain"
)

// Schema holds the compiled JSON schemas derived from the catalog:
// one for emitted records and one for the upstream batch payload contract.
type Schema struct {
	record  *jsonschema.Schema
	payload *jsonschema.Schema
	// PayloadDoc is the raw payload schema, sent upstream as a structured output constraint.
	PayloadDoc map[string]any
}

// NewSchema builds and compiles both schemas.
func NewSchema(c *domain.Catalog) (*Schema, error) {
	record, err := compile("record.json", RecordSchema(c))
	if err != nil {
		return nil, err
	}
	doc := PayloadSchema(c)
	payload, err := compile("payload.json", doc)
	if err != nil {
		return nil, err
	}
	return &Schema{record: record, payload: payload, PayloadDoc: doc}, nil
}

// RecordSchema describes a normalized record.
func RecordSchema(c *domain.Catalog) map[string]any {
	count := map[string]any{"type": "integer", "minimum": 1}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":          map[string]any{"type": "string"},
			"quantity":      count,
			"quantity_min":  count,
			"quantity_max":  count,
			"quantity_best": count,
			"unit":          map[string]any{"type": "string", "enum": c.Units()},
			"category":      map[string]any{"type": "string", "enum": c.Categories()},
			"expiry_date": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{2}\.\d{2}\.\d{4}$`,
			},
			"confidence":     map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"instance_count": map[string]any{"type": "integer", "minimum": 0},
			"instances":      map[string]any{"type": "array", "items": instanceSchema()},
			"uncertain":      map[string]any{"type": "boolean"},
		},
		"required": []string{
			"name", "quantity", "quantity_min", "quantity_max", "quantity_best",
			"unit", "category", "expiry_date", "confidence",
		},
	}
}

// PayloadSchema is the contract the image analysis prompt asks the model to follow.
func PayloadSchema(c *domain.Catalog) map[string]any {
	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":          map[string]any{"type": "string"},
			"quantity":      map[string]any{"type": "integer"},
			"quantity_min":  map[string]any{"type": "integer"},
			"quantity_max":  map[string]any{"type": "integer"},
			"quantity_best": map[string]any{"type": "integer"},
			"unit":          map[string]any{"type": "string", "enum": c.Units()},
			"category":      map[string]any{"type": "string", "enum": c.Categories()},
			"expiry_guess": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": `^\d{2}\.\d{2}\.\d{4}$`,
			},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"instances":  map[string]any{"type": "array", "items": instanceSchema()},
		},
		"required": []string{
			"name", "quantity", "quantity_min", "quantity_max", "quantity_best",
			"unit", "category", "expiry_guess", "confidence", "instances",
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items": map[string]any{"type": "array", "items": item},
			"notes": map[string]any{"type": "string"},
		},
		"required": []string{"items", "notes"},
	}
}

func instanceSchema() map[string]any {
	num := map[string]any{"type": "number"}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           map[string]any{"x": num, "y": num, "w": num, "h": num, "c": num},
		"required":             []string{"x", "y", "w", "h", "c"},
	}
}

func compile(name string, doc map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return s, nil
}

// ValidateRecord checks a normalized record against the record schema.
func (s *Schema) ValidateRecord(r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return validate(s.record, b)
}

// ValidatePayload checks raw upstream output against the payload contract.
// A failure is drift worth logging, not a reason to reject the payload.
func (s *Schema) ValidatePayload(raw []byte) error {
	return validate(s.payload, cleanPayload(raw))
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

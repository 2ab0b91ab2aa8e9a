package docapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	submitSchema = map[string]any{
		"type":     "object",
		"required": []string{"whisper_hash"},
		"properties": map[string]any{
			"whisper_hash": map[string]any{"type": "string", "minLength": 1},
			"status":       map[string]any{"type": "string"},
			"message":      map[string]any{"type": "string"},
		},
	}
	statusSchema = map[string]any{
		"type":     "object",
		"required": []string{"status"},
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []string{StatusAccepted, StatusProcessing, StatusProcessed, StatusErrored},
			},
			"message": map[string]any{"type": "string"},
		},
	}
	retrieveSchema = map[string]any{
		"type":     "object",
		"required": []string{"result_text"},
		"properties": map[string]any{
			"result_text": map[string]any{"type": "string"},
			"page_count":  map[string]any{"type": "integer", "minimum": 0},
			"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"tables": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
)

type compiled struct {
	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

var compiledSchemas = map[string]*compiled{
	"submit.json":   {},
	"status.json":   {},
	"retrieve.json": {},
}

var schemaSources = map[string]map[string]any{
	"submit.json":   submitSchema,
	"status.json":   statusSchema,
	"retrieve.json": retrieveSchema,
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	c := compiledSchemas[name]
	c.once.Do(func() {
		b, err := json.Marshal(schemaSources[name])
		if err != nil {
			c.err = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
			c.err = fmt.Errorf("add schema: %w", err)
			return
		}
		c.schema, c.err = compiler.Compile(name)
	})
	return c.schema, c.err
}

// validate checks a response body against the named schema before it is
// decoded.
func validate(name string, data []byte) error {
	schema, err := compileSchema(name)
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("response does not match %s: %w", name, err)
	}
	return nil
}

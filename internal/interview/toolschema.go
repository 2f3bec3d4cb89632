package interview

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// toolPropertiesSchema requires tool_properties to be a JSON object at the
// top level: the catalogue is free to attach arbitrary per-tool configuration
// (nested values included), but it must not smuggle arrays or scalars where
// the rest of the core expects a map.
const toolPropertiesSchema = `{
  "type": "object",
  "additionalProperties": true
}`

var (
	toolSchemaOnce    sync.Once
	toolSchemaCompile *jsonschema.Schema
	toolSchemaErr     error
)

func compiledToolPropertiesSchema() (*jsonschema.Schema, error) {
	toolSchemaOnce.Do(func() {
		toolSchemaCompile, toolSchemaErr = jsonschema.CompileString("tool_properties", toolPropertiesSchema)
	})
	return toolSchemaCompile, toolSchemaErr
}

// ValidateToolProperties parses raw tool_properties JSON from the catalogue
// and validates its shape. A non-nil error here means the catalogue row is
// malformed and the caller should treat it as a protocol violation, not a
// transient store failure.
func ValidateToolProperties(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("tool_properties: invalid json: %w", err)
	}

	schema, err := compiledToolPropertiesSchema()
	if err != nil {
		return nil, fmt.Errorf("tool_properties: compiling schema: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("tool_properties: %w", err)
	}

	props, _ := payload.(map[string]any)
	return props, nil
}

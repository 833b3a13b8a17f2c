package manifest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// entrySchema describes the manifest fields the analyzer consumes. Validation
// is advisory: a failing manifest is still walked with whatever fields parsed.
const entrySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "pages": {"type": "array", "items": {"type": "string"}},
    "subpackages": {"$ref": "#/$defs/subpackages"},
    "subPackages": {"$ref": "#/$defs/subpackages"},
    "usingComponents": {"type": "object", "additionalProperties": {"type": "string"}},
    "tabBar": {
      "type": "object",
      "properties": {
        "list": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "pagePath": {"type": "string"},
              "iconPath": {"type": "string"},
              "selectedIconPath": {"type": "string"}
            },
            "required": ["pagePath"]
          }
        }
      }
    },
    "themeLocation": {"type": "string"},
    "workers": {"type": "string"}
  },
  "$defs": {
    "subpackages": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "root": {"type": "string"},
          "pages": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["root"]
      }
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(entrySchema))
		if err != nil {
			schemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("manifest.schema.json", doc); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("manifest.schema.json")
	})
	return schema, schemaErr
}

// Validate checks manifest content against the entry schema. A non-nil error
// means the shape deviates from what the analyzer expects; callers log it and
// continue.
func Validate(content []byte) error {
	sch, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("decode manifest: %w", err)
	}
	return sch.Validate(inst)
}

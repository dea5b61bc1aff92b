package config

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "defaultOptions": {"type": "array", "items": {"type": "string"}},
    "pretty": {"enum": ["all", "colors", "format", "none"]},
    "style": {"type": "string", "minLength": 1},
    "timeout": {"type": "number", "exclusiveMinimum": 0},
    "checkStatus": {"type": "boolean"},
    "ignoreStdin": {"type": "boolean"},
    "headers": {"type": "object", "additionalProperties": {"type": "string"}}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Validate checks a decoded config document against the config schema and
// reports every violation in one error.
func Validate(doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating config: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

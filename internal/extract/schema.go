package extract

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mfigueredo/comprobantes-tracker/constants"
)

// resultSchemaTemplate pins the output contract (draft 2020-12); the tipo
// enum is filled in from the category set so the two never drift. Persisting
// layers validate every record against it before writing.
const resultSchemaTemplate = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "success": {"type": "boolean"},
    "tipo": {
      "type": ["string", "null"],
      "enum": [%s, null]
    },
    "numero": {"type": ["string", "null"]},
    "fecha_emision": {"type": ["string", "null"]},
    "total": {"type": ["number", "null"], "minimum": 0},
    "subtotal": {"type": ["number", "null"], "minimum": 0},
    "iva": {"type": ["number", "null"], "minimum": 0},
    "cuit_emisor": {"type": ["string", "null"], "pattern": "^[0-9]{11}$"},
    "razon_social": {"type": ["string", "null"]},
    "confidence": {"type": "number", "minimum": 0.0, "maximum": 1.0},
    "raw_text": {"type": "string"},
    "file_format": {"type": "string"},
    "error": {"type": ["string", "null"]}
  },
  "required": [
    "success", "tipo", "numero", "fecha_emision", "total", "subtotal", "iva",
    "cuit_emisor", "razon_social", "confidence", "raw_text", "file_format", "error"
  ]
}`

var resultSchema = jsonschema.MustCompileString("result.schema.json", resultSchemaJSON())

func resultSchemaJSON() string {
	tags := constants.AllDocTypes()
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = strconv.Quote(tag)
	}
	return fmt.Sprintf(resultSchemaTemplate, strings.Join(quoted, ", "))
}

// ValidateResult checks a Result against the output contract.
func ValidateResult(r *Result) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	if err := resultSchema.Validate(v); err != nil {
		return fmt.Errorf("result contract violation: %w", err)
	}
	return nil
}

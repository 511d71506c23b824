package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// PlantDataSchema describes plant_data.json: an object keyed by normalized
// plant name whose values are objects of string care attributes.
const PlantDataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "properties": {
      "light":            {"type": "string"},
      "water":            {"type": "string"},
      "soil":             {"type": "string"},
      "vastu":            {"type": "string"},
      "fertilizer":       {"type": "string"},
      "suitable_weather": {"type": "string"}
    },
    "additionalProperties": {"type": "string"}
  }
}`

var plantDataSchemaLoader = gojsonschema.NewStringLoader(PlantDataSchema)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Path holds the property names below the root, undotted.
	Path []string `json:"-"`
}

// pathSep splits a gojsonschema context without tripping over dots in keys.
const pathSep = "\x1f"

// String joins all errors into one line for logs and error details.
func (r *ValidationResult) String() string {
	if r == nil || r.Valid {
		return "valid"
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// Plants returns the sorted top-level keys that carry at least one error.
func (r *ValidationResult) Plants() []string {
	if r == nil {
		return nil
	}
	seen := map[string]bool{}
	var keys []string
	for _, e := range r.Errors {
		if len(e.Path) == 0 || seen[e.Path[0]] {
			continue
		}
		seen[e.Path[0]] = true
		keys = append(keys, e.Path[0])
	}
	sort.Strings(keys)
	return keys
}

// ValidateDocument validates raw JSON against a JSON schema. A non-nil error
// means the document (or the schema) could not be parsed at all.
func ValidateDocument(schema gojsonschema.JSONLoader, document []byte) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	return toResult(result), nil
}

// ValidatePlantData validates the contents of a plant data file.
func ValidatePlantData(document []byte) (*ValidationResult, error) {
	return ValidateDocument(plantDataSchemaLoader, document)
}

func toResult(result *gojsonschema.Result) *ValidationResult {
	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		var path []string
		if ctx := desc.Context(); ctx != nil {
			// drop the "(root)" head
			path = strings.Split(ctx.String(pathSep), pathSep)[1:]
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
			Path:    path,
		})
	}
	return out
}

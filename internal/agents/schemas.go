package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Output schemas for the two model-mediated stages. Every model response is
// validated against its stage schema before any field is consumed.
const (
	contextualizeOutputSchema = `{
  "type": "object",
  "properties": {
    "section_correspondence": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {"type": "string"}
    },
    "candidate_change_areas": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 1
    },
    "document_summary_context": {"type": "string", "minLength": 50}
  },
  "required": ["section_correspondence", "candidate_change_areas", "document_summary_context"],
  "additionalProperties": false
}`

	extractOutputSchema = `{
  "type": "object",
  "properties": {
    "sections_changed": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 1
    },
    "topics_touched": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 1
    },
    "summary_of_the_change": {"type": "string", "minLength": 1}
  },
  "required": ["sections_changed", "topics_touched", "summary_of_the_change"],
  "additionalProperties": false
}`
)

// SchemaError reports a model response that does not conform to the declared
// stage output schema. The orchestrator owns the retry policy for it.
type SchemaError struct {
	Stage  string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: response violates output schema: %s", e.Stage, e.Detail)
}

// validateSchema checks raw JSON against the given schema and folds all
// violations into a single deterministic message.
func validateSchema(stage, schema string, raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return &SchemaError{Stage: stage, Detail: err.Error()}
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)
	return &SchemaError{Stage: stage, Detail: strings.Join(errs, "; ")}
}

// stripFences removes a Markdown code fence if the model wrapped its JSON in
// one despite the JSON response mode.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

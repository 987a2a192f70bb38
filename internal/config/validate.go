package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// settingsSchema constrains the raw config file: known keys only, typed
// thresholds, extensions with a leading dot. Checking the raw map before
// decoding means a mistyped key fails loudly instead of unmarshalling into
// a zero value and silently loosening a guardrail.
//
//go:embed schema.json
var settingsSchema string

// ValidateSettings checks the raw settings map, as read from the config
// file, against the embedded schema. The returned error lists every
// violation, sorted, so a broken file is fixed in one pass.
func ValidateSettings(raw map[string]any) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(settingsSchema))
	if err != nil {
		return fmt.Errorf("compile settings schema: %w", err)
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validate settings: %w", err)
	}
	if res.Valid() {
		return nil
	}

	violations := make([]string, 0, len(res.Errors()))
	for _, v := range res.Errors() {
		violations = append(violations, v.String())
	}
	sort.Strings(violations)
	return fmt.Errorf("invalid configuration: %s", strings.Join(violations, "; "))
}

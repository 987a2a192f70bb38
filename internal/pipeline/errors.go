package pipeline

import (
	"errors"
	"fmt"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/agents"
)

// Failure classes. Guardrail and evaluation failures are reported inside
// RunResult rather than as errors; these sentinels cover the hard-failure
// paths and the retryable stage outcomes.
var (
	ErrInputRejected   = errors.New("input rejected by validation")
	ErrSchemaViolation = errors.New("model response violated output schema")
	ErrHallucination   = errors.New("model output not grounded in source text")
	ErrProviderFailure = errors.New("model provider call failed")
	ErrConfiguration   = errors.New("invalid configuration")
)

// classify maps a raw stage error onto the failure taxonomy, preserving the
// underlying detail in the message.
func classify(stage string, err error) error {
	var schemaErr *agents.SchemaError
	if errors.As(err, &schemaErr) {
		return fmt.Errorf("%s: %w: %s", stage, ErrSchemaViolation, schemaErr.Detail)
	}
	return fmt.Errorf("%s: %w: %v", stage, ErrProviderFailure, err)
}

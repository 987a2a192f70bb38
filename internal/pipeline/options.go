package pipeline

import (
	"time"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/guardrail"
)

// Options controls one orchestrator's behavior. Zero values are filled in
// from Defaults by New.
type Options struct {
	// SkipGuardrails disables input and output validation. Evaluation still
	// runs on the raw extraction output.
	SkipGuardrails bool

	// EnableLLMEval adds a model-judged rubric on top of the rule-based
	// evaluation. Judge failures are recorded as warnings, never fatal.
	EnableLLMEval bool

	// MaxStageRetries bounds how many times a stage is re-run after a
	// schema violation or a grounding failure before giving up.
	MaxStageRetries int

	// ProviderMaxRetries bounds transport-level retries per model call.
	ProviderMaxRetries int

	// ProviderRetryBase is the first backoff interval between provider
	// retries; subsequent intervals grow fibonacci-style.
	ProviderRetryBase time.Duration

	// InputLimits overrides the input guardrail thresholds.
	InputLimits guardrail.InputLimits
}

// Defaults returns the standard run configuration.
func Defaults() Options {
	return Options{
		MaxStageRetries:    2,
		ProviderMaxRetries: 3,
		ProviderRetryBase:  500 * time.Millisecond,
		InputLimits:        guardrail.DefaultInputLimits(),
	}
}

func (o Options) withDefaults() Options {
	def := Defaults()
	if o.MaxStageRetries <= 0 {
		o.MaxStageRetries = def.MaxStageRetries
	}
	if o.ProviderMaxRetries <= 0 {
		o.ProviderMaxRetries = def.ProviderMaxRetries
	}
	if o.ProviderRetryBase <= 0 {
		o.ProviderRetryBase = def.ProviderRetryBase
	}
	if o.InputLimits.MaxTextLength == 0 {
		o.InputLimits = def.InputLimits
	}
	return o
}

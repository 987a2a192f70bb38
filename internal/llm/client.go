// Package llm abstracts the completion provider consumed by the model-mediated
// pipeline stages. The pipeline depends only on Client; the Gemini
// implementation lives beside it and test suites substitute their own stubs.
package llm

import (
	"context"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

// Request is a single completion request.
type Request struct {
	// System is the role-defining system instruction.
	System string
	// Prompt is the user prompt.
	Prompt string
	// ForceJSON asks the provider to constrain output to a JSON object.
	ForceJSON bool
	// Temperature defaults to zero; extraction stages run deterministic.
	Temperature float32
}

// Response carries the completion text and provider token accounting.
type Response struct {
	Text  string
	Usage model.Usage
}

// Client issues completion requests against a language-model provider.
// Implementations must honor context cancellation and deadlines.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	ModelName() string
}

// Package pipeline orchestrates a contract comparison run: normalization,
// input validation, the two model stages, output validation, and quality
// evaluation. Expected domain failures are captured in the RunResult;
// only provider and configuration failures surface as errors.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/agents"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/evaluate"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/guardrail"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

const (
	systemName    = "Autonomous Contract Comparison Agents"
	systemVersion = "2.0.0"
)

// Input is one document pair to compare. Texts are the parsed contents;
// paths are optional and enable file-level integrity checks.
type Input struct {
	OriginalText  string
	AmendmentText string
	OriginalPath  string
	AmendmentPath string
}

// Metadata describes how a run was produced.
type Metadata struct {
	GeneratedAt       time.Time `json:"generated_at"`
	System            string    `json:"system"`
	Version           string    `json:"version"`
	GuardrailsEnabled bool      `json:"guardrails_enabled"`
	EvaluationEnabled bool      `json:"evaluation_enabled"`
}

// GuardrailReport collects the validation outcomes of one run.
type GuardrailReport struct {
	Original  *guardrail.Result `json:"original,omitempty"`
	Amendment *guardrail.Result `json:"amendment,omitempty"`
	Output    *guardrail.Result `json:"output,omitempty"`
}

// EvaluationReport collects the quality scores of one run.
type EvaluationReport struct {
	RuleBased evaluate.Result     `json:"rule_based"`
	LLMBased  *evaluate.LLMResult `json:"llm_based,omitempty"`
}

// RunResult is the full outcome of one comparison, success or failure.
// The change fields sit at the top level; diagnostics ride along under
// underscore-prefixed keys.
type RunResult struct {
	SectionsChanged    []string          `json:"sections_changed"`
	TopicsTouched      []string          `json:"topics_touched"`
	SummaryOfTheChange string            `json:"summary_of_the_change"`
	Metadata           Metadata          `json:"_metadata"`
	Guardrails         *GuardrailReport  `json:"_guardrails,omitempty"`
	Evaluation         *EvaluationReport `json:"_evaluation,omitempty"`
	Warnings           []string          `json:"_warnings"`

	// FailedStage names the stage that stopped the run, empty on success.
	FailedStage string `json:"-"`
	// Usage is the accumulated provider token count for the run.
	Usage model.Usage `json:"-"`
}

// Succeeded reports whether the run produced a validated change record.
func (r RunResult) Succeeded() bool { return r.FailedStage == "" }

// Err maps a failed run onto the failure taxonomy; nil for successful runs.
func (r RunResult) Err() error {
	switch r.FailedStage {
	case "":
		return nil
	case "input_validation":
		return fmt.Errorf("%w (see _guardrails for detail)", ErrInputRejected)
	case "output_validation":
		return fmt.Errorf("%w (see _guardrails for detail)", ErrHallucination)
	default:
		return fmt.Errorf("run failed at %s", r.FailedStage)
	}
}

// Orchestrator wires the stages together and owns the retry policy.
type Orchestrator struct {
	opts           Options
	contextualizer *agents.Contextualizer
	extractor      *agents.Extractor
	inputGuard     *guardrail.InputGuardrail
	outputGuard    *guardrail.OutputGuardrail
	evaluator      *evaluate.Evaluator
	judge          *evaluate.LLMJudge
}

// New builds an orchestrator around client. The client is wrapped with
// fibonacci-backoff retries for transport failures.
func New(client llm.Client, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	wrapped := &retryingClient{
		inner:      client,
		maxRetries: uint64(opts.ProviderMaxRetries),
		base:       opts.ProviderRetryBase,
	}

	o := &Orchestrator{
		opts:           opts,
		contextualizer: agents.NewContextualizer(wrapped),
		extractor:      agents.NewExtractor(wrapped),
		inputGuard:     guardrail.NewInputGuardrail(opts.InputLimits),
		outputGuard:    guardrail.NewOutputGuardrail(),
		evaluator:      evaluate.New(),
	}
	if opts.EnableLLMEval {
		o.judge = evaluate.NewLLMJudge(wrapped)
	}
	return o
}

// Run executes the full pipeline for one document pair. Guardrail and
// evaluation failures come back inside the RunResult with a nil error;
// a non-nil error means a provider or configuration fault.
func (o *Orchestrator) Run(ctx context.Context, in Input) (RunResult, error) {
	started := time.Now()
	res := RunResult{
		SectionsChanged: []string{},
		TopicsTouched:   []string{},
		Warnings:        []string{},
		Metadata: Metadata{
			GeneratedAt:       time.Now().UTC(),
			System:            systemName,
			Version:           systemVersion,
			GuardrailsEnabled: !o.opts.SkipGuardrails,
			EvaluationEnabled: true,
		},
	}

	original := document.Normalize(in.OriginalText, in.OriginalPath)
	amendment := document.Normalize(in.AmendmentText, in.AmendmentPath)

	if !o.opts.SkipGuardrails {
		origCheck := o.inputGuard.ValidateInput(original, in.OriginalPath)
		amendCheck := o.inputGuard.ValidateInput(amendment, in.AmendmentPath)
		res.Guardrails = &GuardrailReport{Original: &origCheck, Amendment: &amendCheck}
		res.Warnings = append(res.Warnings, prefixAll("original: ", origCheck.Warnings)...)
		res.Warnings = append(res.Warnings, prefixAll("amendment: ", amendCheck.Warnings)...)

		if !origCheck.Valid || !amendCheck.Valid {
			res.FailedStage = "input_validation"
			res.Warnings = append(res.Warnings, "input validation failed; no model calls were made")
			log.Warn().
				Bool("original_valid", origCheck.Valid).
				Bool("amendment_valid", amendCheck.Valid).
				Msg("input rejected")
			return res, nil
		}
	}

	sm, usage, err := o.contextualize(ctx, original, amendment)
	res.Usage.Add(usage)
	if err != nil {
		res.FailedStage = "contextualize"
		return res, err
	}

	record, usage, err := o.extract(ctx, original, amendment, sm)
	res.Usage.Add(usage)
	if err != nil {
		res.FailedStage = "extract"
		return res, err
	}

	if !o.opts.SkipGuardrails {
		record, usage = o.revalidate(ctx, &res, record, original, amendment, sm)
		res.Usage.Add(usage)
		if res.FailedStage != "" {
			return res, nil
		}
	}

	res.SectionsChanged = record.SectionsChanged
	res.TopicsTouched = record.TopicsTouched
	res.SummaryOfTheChange = record.SummaryOfTheChange

	res.Evaluation = &EvaluationReport{
		RuleBased: o.evaluator.Evaluate(record, original, amendment, sm),
	}
	if o.judge != nil {
		verdict, judgeUsage, judgeErr := o.judge.Evaluate(ctx, record, original, amendment)
		res.Usage.Add(judgeUsage)
		if judgeErr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("llm evaluation: %v", judgeErr))
		} else {
			res.Evaluation.LLMBased = &verdict
		}
	}

	log.Info().
		Int("sections", len(res.SectionsChanged)).
		Float64("overall_score", res.Evaluation.RuleBased.OverallScore).
		Str("grade", res.Evaluation.RuleBased.Grade).
		Dur("duration", time.Since(started)).
		Int("total_tokens", res.Usage.TotalTokens).
		Msg("pipeline run complete")

	return res, nil
}

// contextualize runs the first stage, retrying on schema violations.
func (o *Orchestrator) contextualize(ctx context.Context, original, amendment document.Document) (model.StructuralMap, model.Usage, error) {
	var total model.Usage
	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxStageRetries; attempt++ {
		sm, usage, err := o.contextualizer.Contextualize(ctx, original, amendment)
		total.Add(usage)
		if err == nil {
			return sm, total, nil
		}
		lastErr = err
		var schemaErr *agents.SchemaError
		if !errors.As(err, &schemaErr) {
			break
		}
		log.Warn().Int("attempt", attempt+1).Str("detail", schemaErr.Detail).Msg("contextualize retry")
	}
	return model.StructuralMap{}, total, classify("contextualize", lastErr)
}

// extract runs the second stage, retrying on schema violations.
func (o *Orchestrator) extract(ctx context.Context, original, amendment document.Document, sm model.StructuralMap) (model.ChangeRecord, model.Usage, error) {
	var total model.Usage
	var lastErr error
	for attempt := 0; attempt <= o.opts.MaxStageRetries; attempt++ {
		record, usage, err := o.extractor.Extract(ctx, original, amendment, sm)
		total.Add(usage)
		if err == nil {
			return record, total, nil
		}
		lastErr = err
		var schemaErr *agents.SchemaError
		if !errors.As(err, &schemaErr) {
			break
		}
		log.Warn().Int("attempt", attempt+1).Str("detail", schemaErr.Detail).Msg("extract retry")
	}
	return model.ChangeRecord{}, total, classify("extract", lastErr)
}

// revalidate applies the output guardrail and re-runs extraction when the
// record is ungrounded. On persistent failure it marks the run failed and
// leaves the last validation detail in the result.
func (o *Orchestrator) revalidate(ctx context.Context, res *RunResult, record model.ChangeRecord, original, amendment document.Document, sm model.StructuralMap) (model.ChangeRecord, model.Usage) {
	var total model.Usage

	check := o.outputGuard.ValidateOutput(record, original, amendment)
	for attempt := 0; check.Failed(guardrail.CategoryGroundedness) && attempt < o.opts.MaxStageRetries; attempt++ {
		log.Warn().Int("attempt", attempt+1).Strs("errors", check.Errors).Msg("ungrounded output, re-extracting")
		retried, usage, err := o.extractor.Extract(ctx, original, amendment, sm)
		total.Add(usage)
		if err != nil {
			break
		}
		record = retried
		check = o.outputGuard.ValidateOutput(record, original, amendment)
	}

	if res.Guardrails == nil {
		res.Guardrails = &GuardrailReport{}
	}
	res.Guardrails.Output = &check
	res.Warnings = append(res.Warnings, prefixAll("output: ", check.Warnings)...)

	if !check.Valid {
		res.FailedStage = "output_validation"
		res.Warnings = append(res.Warnings, "output validation failed; evaluation skipped")
		// Preserve the rejected record so the caller can inspect it.
		res.SectionsChanged = record.SectionsChanged
		res.TopicsTouched = record.TopicsTouched
		res.SummaryOfTheChange = record.SummaryOfTheChange
	}
	return record, total
}

func prefixAll(prefix string, msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, prefix+m)
	}
	return out
}

// retryingClient retries transport failures with fibonacci backoff before
// reporting them upstream.
type retryingClient struct {
	inner      llm.Client
	maxRetries uint64
	base       time.Duration
}

func (c *retryingClient) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	var resp llm.Response
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.inner.Complete(ctx, req)
		if callErr != nil {
			log.Debug().Err(callErr).Str("model", c.inner.ModelName()).Msg("provider call failed, retrying")
			return retry.RetryableError(callErr)
		}
		return nil
	})
	if err != nil {
		return llm.Response{}, err
	}
	return resp, nil
}

func (c *retryingClient) ModelName() string { return c.inner.ModelName() }

package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

const contractOriginal = `SERVICE AGREEMENT

This Service Agreement is entered into between TechCorp Solutions Inc. and Global Enterprises LLC.

SECTION 2.0 - PAYMENT TERMS
2.1 Payment Schedule: Client shall pay Vendor within 30 days of invoice receipt. No early payment discount applies.
2.2 Late Fees: Overdue amounts accrue interest at 1.5% per month.

SECTION 4.0 - CONFIDENTIALITY
4.2 Duration: Confidentiality obligations shall survive for 2 years after termination of this agreement.`

const contractAmendment = `AMENDMENT NO. 1 TO SERVICE AGREEMENT

This Amendment modifies the Service Agreement between TechCorp Solutions Inc. and Global Enterprises LLC.

SECTION 2.0 - PAYMENT TERMS
2.1 Payment Schedule: Client shall pay Vendor within 45 days of invoice receipt. A 2% discount applies to payments made within 10 days.
2.2 Late Fees: Overdue amounts accrue interest at 1.5% per month.

SECTION 4.0 - CONFIDENTIALITY
4.2 Duration: Confidentiality obligations shall survive for 5 years after termination of this agreement.

EXHIBIT A - SERVICE LEVEL AGREEMENT
Vendor guarantees 99.9% uptime for all technology systems covered by this agreement.`

const contextJSON = `{
  "section_correspondence": {
    "2.1": "2.1",
    "4.2": "4.2",
    "EXHIBIT A - SERVICE LEVEL AGREEMENT": "new"
  },
  "candidate_change_areas": ["2.1", "4.2", "EXHIBIT A - SERVICE LEVEL AGREEMENT"],
  "document_summary_context": "A technology service agreement and its first amendment changing payment, confidentiality, and service level terms."
}`

const extractJSON = `{
  "sections_changed": ["2.1", "4.2", "EXHIBIT A - SERVICE LEVEL AGREEMENT"],
  "topics_touched": ["Payment Timeline", "Early Payment Discount", "Confidentiality Period", "Service Levels"],
  "summary_of_the_change": "This amendment introduces three substantive changes. First, section 2.1 extends the payment window from 30 to 45 days and adds a 2% early payment discount for payment within 10 days. Second, section 4.2 extends the confidentiality period from 2 to 5 years after termination. Additionally, Exhibit A introduces a new service level commitment guaranteeing 99.9% uptime."
}`

// hallucinated references section 17.3 which appears in neither document.
const hallucinatedJSON = `{
  "sections_changed": ["17.3"],
  "topics_touched": ["Zoning Disputes"],
  "summary_of_the_change": "Section 17.3 was rewritten entirely to move zoning disputes to binding arbitration, a change that affects how all future disagreements between the parties will be resolved."
}`

// scriptClient replays canned responses in order, or fails every call.
type scriptClient struct {
	responses []string
	err       error
	calls     int
}

func (c *scriptClient) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	if c.err != nil {
		c.calls++
		return llm.Response{}, c.err
	}
	idx := c.calls
	if idx >= len(c.responses) {
		idx = len(c.responses) - 1
	}
	c.calls++
	return llm.Response{
		Text:  c.responses[idx],
		Usage: model.Usage{PromptTokens: 200, CompletionTokens: 100, TotalTokens: 300},
	}, nil
}

func (c *scriptClient) ModelName() string { return "script" }

func fastOpts() Options {
	opts := Defaults()
	opts.ProviderRetryBase = time.Millisecond
	return opts
}

func contractInput() Input {
	return Input{OriginalText: contractOriginal, AmendmentText: contractAmendment}
}

func TestRunFullPipeline(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, extractJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)
	require.True(t, res.Succeeded())

	assert.Subset(t, res.SectionsChanged, []string{"2.1", "4.2"})
	assert.Contains(t, res.SectionsChanged, "EXHIBIT A - SERVICE LEVEL AGREEMENT")
	assert.Contains(t, res.TopicsTouched, "Payment Timeline")
	assert.Contains(t, res.TopicsTouched, "Confidentiality Period")

	require.NotNil(t, res.Guardrails)
	assert.True(t, res.Guardrails.Original.Valid)
	assert.True(t, res.Guardrails.Amendment.Valid)
	assert.True(t, res.Guardrails.Output.Valid)

	require.NotNil(t, res.Evaluation)
	assert.GreaterOrEqual(t, res.Evaluation.RuleBased.OverallScore, 70.0)

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, 600, res.Usage.TotalTokens)
	assert.True(t, res.Metadata.GuardrailsEnabled)
	assert.Equal(t, systemVersion, res.Metadata.Version)
}

// Two runs over the same pair with identical model responses must agree on
// the record and on every guardrail outcome.
func TestRunIdenticalInputsIdenticalResults(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, extractJSON, contextJSON, extractJSON}}
	orch := New(client, fastOpts())

	first, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)
	second, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)
	require.True(t, first.Succeeded())
	require.True(t, second.Succeeded())

	assert.Equal(t, first.SectionsChanged, second.SectionsChanged)
	assert.Equal(t, first.TopicsTouched, second.TopicsTouched)
	assert.Equal(t, first.SummaryOfTheChange, second.SummaryOfTheChange)
	assert.Equal(t, first.Guardrails, second.Guardrails)
	assert.Equal(t, first.Warnings, second.Warnings)

	require.NotNil(t, first.Evaluation)
	require.NotNil(t, second.Evaluation)
	assert.Equal(t, first.Evaluation.RuleBased.DimensionScores, second.Evaluation.RuleBased.DimensionScores)
	assert.Equal(t, first.Evaluation.RuleBased.Grade, second.Evaluation.RuleBased.Grade)
	assert.Equal(t, 4, client.calls)
}

func TestRunEmptyAmendmentBlocksBeforeModelCalls(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, extractJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), Input{OriginalText: contractOriginal, AmendmentText: ""})
	require.NoError(t, err)

	assert.False(t, res.Succeeded())
	assert.Equal(t, "input_validation", res.FailedStage)
	assert.ErrorIs(t, res.Err(), ErrInputRejected)
	assert.Empty(t, res.SectionsChanged)
	assert.Zero(t, client.calls, "rejected input must not reach the model")

	require.NotNil(t, res.Guardrails)
	assert.True(t, res.Guardrails.Original.Valid)
	require.NotNil(t, res.Guardrails.Amendment)
	assert.False(t, res.Guardrails.Amendment.Valid)
	assert.NotEmpty(t, res.Guardrails.Amendment.Errors)
	assert.Contains(t, res.Guardrails.Amendment.Errors[0], "too short")
	assert.Nil(t, res.Evaluation)
}

func TestRunRetriesSchemaViolation(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{`{"not": "the schema"}`, contextJSON, extractJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, 3, client.calls)
}

func TestRunSchemaViolationExhausted(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{`{"not": "the schema"}`}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaViolation)
	assert.Equal(t, "contextualize", res.FailedStage)
	// Initial attempt plus MaxStageRetries.
	assert.Equal(t, 3, client.calls)
}

func TestRunProviderFailure(t *testing.T) {
	t.Parallel()

	client := &scriptClient{err: errors.New("connection reset")}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Equal(t, "contextualize", res.FailedStage)
	// Initial call plus ProviderMaxRetries transport attempts.
	assert.Equal(t, 4, client.calls)
}

func TestRunReextractsOnHallucination(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, hallucinatedJSON, extractJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.NotContains(t, res.SectionsChanged, "17.3")
	assert.True(t, res.Guardrails.Output.Valid)
	assert.Equal(t, 3, client.calls)
}

func TestRunHallucinationExhausted(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, hallucinatedJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)

	assert.False(t, res.Succeeded())
	assert.Equal(t, "output_validation", res.FailedStage)
	assert.ErrorIs(t, res.Err(), ErrHallucination)
	assert.Nil(t, res.Evaluation, "invalid output must never be evaluated")
	// The rejected record stays available for diagnosis.
	assert.Equal(t, []string{"17.3"}, res.SectionsChanged)
}

func TestRunSkipGuardrails(t *testing.T) {
	t.Parallel()

	opts := fastOpts()
	opts.SkipGuardrails = true
	client := &scriptClient{responses: []string{contextJSON, extractJSON}}
	orch := New(client, opts)

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)

	assert.True(t, res.Succeeded())
	assert.Nil(t, res.Guardrails)
	assert.False(t, res.Metadata.GuardrailsEnabled)
	require.NotNil(t, res.Evaluation)
}

func TestRunResultSerialization(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, extractJSON}}
	orch := New(client, fastOpts())

	res, err := orch.Run(context.Background(), contractInput())
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"sections_changed", "topics_touched", "summary_of_the_change", "_metadata", "_guardrails", "_evaluation", "_warnings"} {
		assert.Contains(t, decoded, key)
	}
	assert.NotContains(t, decoded, "FailedStage")
}

func TestBatchRunContinuesPastFailures(t *testing.T) {
	t.Parallel()

	client := &scriptClient{responses: []string{contextJSON, extractJSON}}
	orch := New(client, fastOpts())
	runner := NewBatchRunner(orch, 2)

	items := []BatchItem{
		{Name: "good", Input: contractInput()},
		{Name: "empty", Input: Input{OriginalText: contractOriginal, AmendmentText: ""}},
	}

	results, tracker, err := runner.Run(context.Background(), items)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "good", results[0].Name)
	assert.True(t, results[0].Result.Succeeded())
	assert.False(t, results[1].Result.Succeeded())

	assert.Equal(t, 1, tracker.Count())
	avgs := tracker.AverageScores()
	assert.GreaterOrEqual(t, avgs["overall"], 70.0)
}

package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

const originalText = `SERVICE AGREEMENT

SECTION 2.0 - PAYMENT TERMS
2.1 Payment Schedule: Client shall pay Vendor within 30 days of invoice receipt

SECTION 4.0 - CONFIDENTIALITY
4.2 Duration: Confidentiality obligations shall survive for 2 years after termination`

const amendmentText = `AMENDMENT NO. 1 TO SERVICE AGREEMENT

SECTION 2.0 - PAYMENT TERMS
2.1 Payment Schedule: Client shall pay Vendor within 45 days of invoice receipt.

SECTION 4.0 - CONFIDENTIALITY
4.2 Duration: Confidentiality obligations shall survive for 5 years after termination

EXHIBIT A - SERVICE LEVEL AGREEMENT
Vendor guarantees 99.9% uptime for all technology systems.`

// stubClient returns canned responses in order and counts calls.
type stubClient struct {
	responses []string
	err       error
	calls     int
}

func (s *stubClient) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	if s.err != nil {
		return llm.Response{}, s.err
	}
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return llm.Response{
		Text:  s.responses[idx],
		Usage: model.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func (s *stubClient) ModelName() string { return "stub" }

const goodContextJSON = `{
  "section_correspondence": {
    "2.1": "2.1",
    "4.2": "4.2",
    "EXHIBIT A - SERVICE LEVEL AGREEMENT": "new"
  },
  "candidate_change_areas": ["2.1", "4.2", "EXHIBIT A - SERVICE LEVEL AGREEMENT"],
  "document_summary_context": "A service agreement and its first amendment changing payment and confidentiality terms."
}`

func docs(t *testing.T) (document.Document, document.Document) {
	t.Helper()
	return document.Normalize(originalText, "orig.jpg"), document.Normalize(amendmentText, "amend.jpg")
}

func TestContextualizeBuildsStructuralMap(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	stage := NewContextualizer(&stubClient{responses: []string{goodContextJSON}})

	sm, usage, err := stage.Contextualize(context.Background(), original, amendment)
	require.NoError(t, err)

	assert.Equal(t, "2.1", sm.SectionCorrespondence["2.1"])
	assert.Equal(t, model.NewSectionSentinel, sm.SectionCorrespondence["EXHIBIT A - SERVICE LEVEL AGREEMENT"])
	assert.Len(t, sm.CandidateChangeAreas, 3)
	assert.Equal(t, 150, usage.TotalTokens)

	// Invariant: every candidate area is a correspondence key.
	for _, area := range sm.CandidateChangeAreas {
		_, ok := sm.SectionCorrespondence[area]
		assert.True(t, ok, "candidate %q missing from correspondence", area)
	}
}

func TestContextualizeDropsUnknownLabels(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	resp := `{
  "section_correspondence": {"2.1": "2.1", "99.9": "99.9"},
  "candidate_change_areas": ["2.1", "42.0"],
  "document_summary_context": "A service agreement and its amendment with renumbered payment sections."
}`
	stage := NewContextualizer(&stubClient{responses: []string{resp}})

	sm, _, err := stage.Contextualize(context.Background(), original, amendment)
	require.NoError(t, err)

	_, ok := sm.SectionCorrespondence["99.9"]
	assert.False(t, ok, "ungrounded correspondence key must be dropped")
	assert.Equal(t, []string{"2.1"}, sm.CandidateChangeAreas)
}

func TestContextualizeHandlesFencedJSON(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	stage := NewContextualizer(&stubClient{responses: []string{"```json\n" + goodContextJSON + "\n```"}})

	_, _, err := stage.Contextualize(context.Background(), original, amendment)
	assert.NoError(t, err)
}

func TestContextualizeSchemaViolation(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	stage := NewContextualizer(&stubClient{responses: []string{`{"section_correspondence": {}}`}})

	_, _, err := stage.Contextualize(context.Background(), original, amendment)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "contextualize", schemaErr.Stage)
}

func TestContextualizeProviderError(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	providerErr := errors.New("rate limited")
	stage := NewContextualizer(&stubClient{err: providerErr})

	_, _, err := stage.Contextualize(context.Background(), original, amendment)
	require.Error(t, err)
	var schemaErr *SchemaError
	assert.False(t, errors.As(err, &schemaErr), "provider failure must not be a schema violation")
	assert.ErrorIs(t, err, providerErr)
}

const goodExtractJSON = `{
  "sections_changed": ["2.1", "4.2", "EXHIBIT A - SERVICE LEVEL AGREEMENT", "2.1"],
  "topics_touched": ["Payment Timeline", "Confidentiality Period", "Service Levels", "Payment Timeline"],
  "summary_of_the_change": "This amendment introduces three changes. First, section 2.1 extends payment from 30 to 45 days and adds a 2% early payment discount. Second, section 4.2 extends confidentiality from 2 to 5 years. Third, Exhibit A adds a 99.9% uptime guarantee."
}`

func TestExtractDedupesAndValidates(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	stage := NewExtractor(&stubClient{responses: []string{goodExtractJSON}})
	sm := model.StructuralMap{
		SectionCorrespondence:  map[string]string{"2.1": "2.1", "4.2": "4.2"},
		CandidateChangeAreas:   []string{"2.1", "4.2"},
		DocumentSummaryContext: "A service agreement amendment.",
	}

	record, usage, err := stage.Extract(context.Background(), original, amendment, sm)
	require.NoError(t, err)

	assert.Equal(t, []string{"2.1", "4.2", "EXHIBIT A - SERVICE LEVEL AGREEMENT"}, record.SectionsChanged)
	assert.Equal(t, []string{"Payment Timeline", "Confidentiality Period", "Service Levels"}, record.TopicsTouched)
	assert.GreaterOrEqual(t, len(record.SummaryOfTheChange), 100)
	assert.Equal(t, 150, usage.TotalTokens)
}

func TestExtractSchemaViolation(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	stage := NewExtractor(&stubClient{responses: []string{`{"sections_changed": [], "topics_touched": ["x"], "summary_of_the_change": "y"}`}})

	_, _, err := stage.Extract(context.Background(), original, amendment, model.StructuralMap{})
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "extract", schemaErr.Stage)
}

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	original, amendment := docs(t)
	sm := model.StructuralMap{
		SectionCorrespondence: map[string]string{"2.1": "2.1"},
		CandidateChangeAreas:  []string{"2.1"},
	}

	first, _, err := NewExtractor(&stubClient{responses: []string{goodExtractJSON}}).Extract(context.Background(), original, amendment, sm)
	require.NoError(t, err)
	second, _, err := NewExtractor(&stubClient{responses: []string{goodExtractJSON}}).Extract(context.Background(), original, amendment, sm)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

// LLMResult holds the model-judged rubric scores, each on a 1-10 scale.
type LLMResult struct {
	LegalAccuracy     int      `json:"legal_accuracy"`
	BusinessRelevance int      `json:"business_relevance"`
	SummaryQuality    int      `json:"summary_quality"`
	OverallAssessment string   `json:"overall_assessment"`
	KeyStrengths      []string `json:"key_strengths"`
	KeyWeaknesses     []string `json:"key_weaknesses"`
}

const llmResultSchema = `{
  "type": "object",
  "required": ["legal_accuracy", "business_relevance", "summary_quality", "overall_assessment"],
  "properties": {
    "legal_accuracy": {"type": "integer", "minimum": 1, "maximum": 10},
    "business_relevance": {"type": "integer", "minimum": 1, "maximum": 10},
    "summary_quality": {"type": "integer", "minimum": 1, "maximum": 10},
    "overall_assessment": {"type": "string", "minLength": 1},
    "key_strengths": {"type": "array", "items": {"type": "string"}},
    "key_weaknesses": {"type": "array", "items": {"type": "string"}}
  }
}`

const llmJudgeSystemPrompt = `You are a contract law expert reviewing the quality of an automated contract change extraction. Be strict and specific. Respond with JSON only.`

// excerptLimit bounds how much source text is sent to the judging model.
const excerptLimit = 1000

// LLMJudge asks a language model to score the subjective qualities that
// rule-based checks cannot assess.
type LLMJudge struct {
	client llm.Client
}

func NewLLMJudge(client llm.Client) *LLMJudge {
	return &LLMJudge{client: client}
}

func (j *LLMJudge) Evaluate(ctx context.Context, record model.ChangeRecord, original, amendment document.Document) (LLMResult, model.Usage, error) {
	prompt := buildJudgePrompt(record, original, amendment)

	resp, err := j.client.Complete(ctx, llm.Request{
		System:    llmJudgeSystemPrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return LLMResult{}, model.Usage{}, fmt.Errorf("llm evaluation: %w", err)
	}

	raw := strings.TrimSpace(resp.Text)
	verdict, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(llmResultSchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return LLMResult{}, resp.Usage, fmt.Errorf("llm evaluation response: %w", err)
	}
	if !verdict.Valid() {
		details := make([]string, 0, len(verdict.Errors()))
		for _, e := range verdict.Errors() {
			details = append(details, e.String())
		}
		return LLMResult{}, resp.Usage, fmt.Errorf("llm evaluation response: %s", strings.Join(details, "; "))
	}

	var out LLMResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return LLMResult{}, resp.Usage, fmt.Errorf("llm evaluation response: %w", err)
	}
	return out, resp.Usage, nil
}

func buildJudgePrompt(record model.ChangeRecord, original, amendment document.Document) string {
	var b strings.Builder
	b.WriteString("ORIGINAL CONTRACT (excerpt):\n")
	b.WriteString(excerpt(original.RawText))
	b.WriteString("\n\nAMENDMENT (excerpt):\n")
	b.WriteString(excerpt(amendment.RawText))
	b.WriteString("\n\nEXTRACTED CHANGES:\nSections Changed: ")
	b.WriteString(strings.Join(record.SectionsChanged, ", "))
	b.WriteString("\nTopics Touched: ")
	b.WriteString(strings.Join(record.TopicsTouched, ", "))
	b.WriteString("\nSummary: ")
	b.WriteString(record.SummaryOfTheChange)
	b.WriteString("\n\nScore this extraction on a 1-10 scale for each of:\n")
	b.WriteString("1. legal_accuracy: are the changes correctly identified from a legal perspective?\n")
	b.WriteString("2. business_relevance: are the identified changes materially significant?\n")
	b.WriteString("3. summary_quality: is the summary clear, accurate, and comprehensive?\n\n")
	b.WriteString(`Respond with a JSON object: {"legal_accuracy": <1-10>, "business_relevance": <1-10>, "summary_quality": <1-10>, "overall_assessment": "<brief assessment>", "key_strengths": [...], "key_weaknesses": [...]}`)
	return b.String()
}

func excerpt(text string) string {
	if len(text) <= excerptLimit {
		return text
	}
	return text[:excerptLimit] + "..."
}

package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

// Extractor is the second stage: given both documents and the structural map
// it produces the final change record.
type Extractor struct {
	client llm.Client
}

// NewExtractor creates the extraction stage.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract refines the candidate change areas into a validated ChangeRecord.
// A non-conforming model response is a SchemaError; the orchestrator decides
// whether to retry.
func (a *Extractor) Extract(ctx context.Context, original, amendment document.Document, sm model.StructuralMap) (model.ChangeRecord, model.Usage, error) {
	prompt, err := buildExtractPrompt(original, amendment, sm)
	if err != nil {
		return model.ChangeRecord{}, model.Usage{}, err
	}

	started := time.Now()
	resp, err := a.client.Complete(ctx, llm.Request{
		System:    extractSystemPrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return model.ChangeRecord{}, model.Usage{}, fmt.Errorf("extract: %w", err)
	}

	raw := []byte(stripFences(resp.Text))
	if err := validateSchema("extract", extractOutputSchema, raw); err != nil {
		return model.ChangeRecord{}, resp.Usage, err
	}
	var record model.ChangeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return model.ChangeRecord{}, resp.Usage, &SchemaError{Stage: "extract", Detail: err.Error()}
	}

	record.SectionsChanged = dedupe(record.SectionsChanged)
	record.TopicsTouched = dedupe(record.TopicsTouched)
	record.SummaryOfTheChange = strings.TrimSpace(record.SummaryOfTheChange)

	log.Info().
		Int("sections_changed", len(record.SectionsChanged)).
		Int("topics_touched", len(record.TopicsTouched)).
		Int("summary_chars", len(record.SummaryOfTheChange)).
		Dur("duration", time.Since(started)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("stage: extraction complete")
	return record, resp.Usage, nil
}

// dedupe removes duplicate entries while preserving order, mirroring the
// uniqueness invariant of the change record.
func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func buildExtractPrompt(original, amendment document.Document, sm model.StructuralMap) (string, error) {
	guidance, err := json.MarshalIndent(sm, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal structural map: %w", err)
	}

	var b strings.Builder
	b.WriteString("STRUCTURAL ANALYSIS (from the contextualization stage):\n")
	b.Write(guidance)
	b.WriteString("\n\nORIGINAL CONTRACT:\n")
	b.WriteString(original.RawText)
	b.WriteString("\n\nAMENDMENT CONTRACT:\n")
	b.WriteString(amendment.RawText)
	b.WriteString("\n\nUsing the structural analysis above, extract the specific changes in the specified JSON format.")
	return b.String(), nil
}

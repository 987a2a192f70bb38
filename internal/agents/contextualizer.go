// Package agents implements the two model-mediated pipeline stages: the
// contextualization stage producing the structural map between a contract and
// its amendment, and the extraction stage producing the final change record.
// Each stage is a pure transformation over an llm.Client: typed input, one
// completion call, schema-validated typed output.
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

// Contextualizer is the first stage: it builds the section correspondence and
// the candidate change areas that bound the extraction stage's search space.
type Contextualizer struct {
	client llm.Client
}

// NewContextualizer creates the contextualization stage.
func NewContextualizer(client llm.Client) *Contextualizer {
	return &Contextualizer{client: client}
}

// contextualizeResponse is the stage's wire format.
type contextualizeResponse struct {
	SectionCorrespondence  map[string]string `json:"section_correspondence"`
	CandidateChangeAreas   []string          `json:"candidate_change_areas"`
	DocumentSummaryContext string            `json:"document_summary_context"`
}

// Contextualize maps the structure of both documents. Labels returned by the
// model that exist in neither document are dropped, never fabricated further.
func (a *Contextualizer) Contextualize(ctx context.Context, original, amendment document.Document) (model.StructuralMap, model.Usage, error) {
	prompt := buildContextualizePrompt(original, amendment)

	started := time.Now()
	resp, err := a.client.Complete(ctx, llm.Request{
		System:    contextualizeSystemPrompt,
		Prompt:    prompt,
		ForceJSON: true,
	})
	if err != nil {
		return model.StructuralMap{}, model.Usage{}, fmt.Errorf("contextualize: %w", err)
	}

	raw := []byte(stripFences(resp.Text))
	if err := validateSchema("contextualize", contextualizeOutputSchema, raw); err != nil {
		return model.StructuralMap{}, resp.Usage, err
	}
	var wire contextualizeResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return model.StructuralMap{}, resp.Usage, &SchemaError{Stage: "contextualize", Detail: err.Error()}
	}

	sm := buildStructuralMap(wire, original, amendment)
	if len(sm.SectionCorrespondence) == 0 {
		return model.StructuralMap{}, resp.Usage, &SchemaError{
			Stage:  "contextualize",
			Detail: "no returned section label matches either document",
		}
	}

	log.Info().
		Int("correspondences", len(sm.SectionCorrespondence)).
		Int("candidate_areas", len(sm.CandidateChangeAreas)).
		Dur("duration", time.Since(started)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("stage: contextualization complete")
	return sm, resp.Usage, nil
}

// buildStructuralMap filters the wire response down to labels grounded in the
// documents and normalizes the new-section sentinel. The resulting map always
// satisfies the invariant that every candidate area is a correspondence key.
func buildStructuralMap(wire contextualizeResponse, original, amendment document.Document) model.StructuralMap {
	sm := model.StructuralMap{
		SectionCorrespondence:  make(map[string]string, len(wire.SectionCorrespondence)),
		CandidateChangeAreas:   make([]string, 0, len(wire.CandidateChangeAreas)),
		DocumentSummaryContext: strings.TrimSpace(wire.DocumentSummaryContext),
	}

	for amendLabel, origLabel := range wire.SectionCorrespondence {
		if !amendment.HasLabel(amendLabel) && !original.HasLabel(amendLabel) {
			log.Debug().Str("label", amendLabel).Msg("stage: dropping unknown correspondence key")
			continue
		}
		sm.SectionCorrespondence[amendLabel] = normalizeCounterpart(origLabel, original)
	}

	for _, area := range wire.CandidateChangeAreas {
		if _, ok := sm.SectionCorrespondence[area]; ok {
			sm.CandidateChangeAreas = appendUnique(sm.CandidateChangeAreas, area)
			continue
		}
		// A flagged area the model forgot to map still counts when the label
		// is grounded in the amendment.
		if amendment.HasLabel(area) {
			counterpart := model.NewSectionSentinel
			if original.HasLabel(area) {
				counterpart = area
			}
			sm.SectionCorrespondence[area] = counterpart
			sm.CandidateChangeAreas = appendUnique(sm.CandidateChangeAreas, area)
			continue
		}
		log.Debug().Str("label", area).Msg("stage: dropping ungrounded candidate area")
	}

	return sm
}

// normalizeCounterpart folds the model's spellings of "no counterpart"
// ("[NEW]", "NEW", empty) into the sentinel, and keeps only grounded labels.
func normalizeCounterpart(origLabel string, original document.Document) string {
	cleaned := strings.ToLower(strings.Trim(strings.TrimSpace(origLabel), "[]"))
	if cleaned == "" || cleaned == model.NewSectionSentinel {
		return model.NewSectionSentinel
	}
	if !original.HasLabel(origLabel) {
		return model.NewSectionSentinel
	}
	return origLabel
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}

func buildContextualizePrompt(original, amendment document.Document) string {
	var b strings.Builder
	b.WriteString("ORIGINAL CONTRACT SECTIONS:\n")
	writeLabels(&b, original)
	b.WriteString("\nAMENDMENT CONTRACT SECTIONS:\n")
	writeLabels(&b, amendment)
	b.WriteString("\nORIGINAL CONTRACT TEXT:\n")
	b.WriteString(original.RawText)
	b.WriteString("\n\nAMENDMENT CONTRACT TEXT:\n")
	b.WriteString(amendment.RawText)
	b.WriteString("\n\nProduce the structural map in the specified JSON format.")
	return b.String()
}

func writeLabels(b *strings.Builder, doc document.Document) {
	if len(doc.Sections) == 0 {
		b.WriteString("- (none detected)\n")
		return
	}
	for _, s := range doc.Sections {
		fmt.Fprintf(b, "- %s\n", s.Label)
	}
}

// Package model defines the shared wire types exchanged between pipeline stages.
package model

// NewSectionSentinel marks an amendment section with no counterpart in the
// original document.
const NewSectionSentinel = "new"

// StructuralMap is the contextualization stage output: the correspondence
// between amendment and original sections plus the areas flagged as likely
// changed.
type StructuralMap struct {
	// SectionCorrespondence maps an amendment section label to the matching
	// original section label, or to NewSectionSentinel.
	SectionCorrespondence map[string]string `json:"section_correspondence"`
	// CandidateChangeAreas lists amendment section labels flagged as likely
	// modified. Every entry is also a key of SectionCorrespondence.
	CandidateChangeAreas []string `json:"candidate_change_areas"`
	// DocumentSummaryContext is a short description of the document pair,
	// passed through to the extraction stage for consistency checks.
	DocumentSummaryContext string `json:"document_summary_context"`
}

// HasCandidate reports whether label is flagged as a candidate change area.
func (m StructuralMap) HasCandidate(label string) bool {
	for _, area := range m.CandidateChangeAreas {
		if area == label {
			return true
		}
	}
	return false
}

// ChangeRecord is the extraction stage output and the final structured
// description of a contract's changes.
type ChangeRecord struct {
	SectionsChanged    []string `json:"sections_changed"`
	TopicsTouched      []string `json:"topics_touched"`
	SummaryOfTheChange string   `json:"summary_of_the_change"`
}

// Empty reports whether the record carries no content.
func (r ChangeRecord) Empty() bool {
	return len(r.SectionsChanged) == 0 && len(r.TopicsTouched) == 0 && r.SummaryOfTheChange == ""
}

// Usage captures provider token counts for a single completion call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

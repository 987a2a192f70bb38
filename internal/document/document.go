// Package document defines the normalized contract document representation and
// the text normalizer that produces it from raw parser output.
package document

import "strings"

// PreambleLabel is assigned to text that precedes the first detected heading.
const PreambleLabel = "Preamble"

// Section is one labelled span of contract text.
type Section struct {
	Label string `json:"label"`
	Body  string `json:"body"`
}

// Document is one normalized contract, original or amendment. It is created
// once per normalizer invocation and never mutated afterwards.
type Document struct {
	// RawText is the full canonicalized text.
	RawText string `json:"raw_text"`
	// Sections is the ordered segmentation of RawText. Labels are not
	// guaranteed unique or contiguous; amendments may renumber.
	Sections []Section `json:"sections"`
	// SourceRef identifies the originating file. Reporting only; content
	// decisions never depend on it.
	SourceRef string `json:"source_ref"`
}

// Labels returns the section labels in order.
func (d Document) Labels() []string {
	labels := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		labels = append(labels, s.Label)
	}
	return labels
}

// HasLabel reports whether a section label matches the given label,
// case-insensitively. A match is exact or by containment in either direction,
// so "Exhibit A" matches the section "EXHIBIT A - SERVICE DESCRIPTION".
func (d Document) HasLabel(label string) bool {
	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return false
	}
	for _, s := range d.Sections {
		have := strings.ToLower(s.Label)
		if have == needle || strings.Contains(have, needle) || strings.Contains(needle, have) {
			return true
		}
	}
	return false
}

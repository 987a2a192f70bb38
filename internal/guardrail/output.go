package guardrail

import (
	"fmt"
	"strings"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

// MinSummaryLength is the completeness floor for the change summary.
const MinSummaryLength = 100

// OutputGuardrail validates a ChangeRecord for internal consistency and
// groundedness against the source documents.
type OutputGuardrail struct{}

// NewOutputGuardrail creates an output guardrail.
func NewOutputGuardrail() *OutputGuardrail {
	return &OutputGuardrail{}
}

// ValidateOutput checks completeness (error), groundedness of every cited
// section label (error) and topic cross-reference (warning only; topics may be
// paraphrased).
func (g *OutputGuardrail) ValidateOutput(record model.ChangeRecord, original, amendment document.Document) Result {
	res := newResult()

	g.checkCompleteness(record, res)
	g.checkGroundedness(record, original, amendment, res)
	g.checkTopicCrossReference(record, original, amendment, res)
	g.checkGenericTopics(record, res)

	res.Valid = len(res.Errors) == 0
	return *res
}

func (g *OutputGuardrail) checkCompleteness(record model.ChangeRecord, res *Result) {
	if len(record.SectionsChanged) == 0 {
		res.fail(CategoryCompleteness, "no changed sections identified")
	} else {
		res.pass()
	}
	if len(record.TopicsTouched) == 0 {
		res.fail(CategoryCompleteness, "no affected topics identified")
	} else {
		res.pass()
	}
	if len(record.SummaryOfTheChange) < MinSummaryLength {
		res.fail(CategoryCompleteness, fmt.Sprintf("summary too short (%d chars, minimum %d)", len(record.SummaryOfTheChange), MinSummaryLength))
	} else {
		res.pass()
	}
}

// checkGroundedness rejects section labels with no case-insensitive match in
// either document. An unmatched label is a hallucination.
func (g *OutputGuardrail) checkGroundedness(record model.ChangeRecord, original, amendment document.Document, res *Result) {
	for _, label := range record.SectionsChanged {
		if original.HasLabel(label) || amendment.HasLabel(label) {
			res.pass()
			continue
		}
		res.fail(CategoryGroundedness, fmt.Sprintf("section %q not found in either document (possible hallucination)", label))
	}
}

// checkTopicCrossReference warns when topics cannot be traced to the summary
// or the section bodies by keyword overlap.
func (g *OutputGuardrail) checkTopicCrossReference(record model.ChangeRecord, original, amendment document.Document, res *Result) {
	if len(record.TopicsTouched) == 0 {
		return
	}
	haystack := strings.ToLower(record.SummaryOfTheChange + " " + original.RawText + " " + amendment.RawText)
	missing := make([]string, 0)
	for _, topic := range record.TopicsTouched {
		if !topicMentioned(topic, haystack) {
			missing = append(missing, topic)
		}
	}
	if len(missing) > 0 {
		res.warn(fmt.Sprintf("topics not traceable to source text: %s", strings.Join(missing, ", ")))
	}
	res.pass()
}

func (g *OutputGuardrail) checkGenericTopics(record model.ChangeRecord, res *Result) {
	for _, topic := range record.TopicsTouched {
		lower := strings.ToLower(topic)
		for _, generic := range genericTopics {
			if lower == generic {
				res.warn(fmt.Sprintf("topic %q is too generic to be actionable", topic))
			}
		}
	}
	for _, section := range record.SectionsChanged {
		lower := strings.ToLower(section)
		for _, broad := range broadSectionRefs {
			if lower == broad {
				res.warn(fmt.Sprintf("section reference %q is a catch-all", section))
			}
		}
	}
	res.pass()
}

// topicMentioned reports whether any keyword of the topic (longer than three
// characters) occurs in the haystack. Topics are matched fuzzily because the
// model is free to paraphrase.
func topicMentioned(topic, haystack string) bool {
	for _, word := range strings.Fields(strings.ToLower(topic)) {
		if len(word) > 3 && strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

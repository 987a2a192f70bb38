// Package evaluate scores a validated change record along five quality
// dimensions and derives an overall grade with improvement hints.
package evaluate

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/document"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/model"
)

// Dimension names, in reporting order.
const (
	DimCompleteness = "completeness"
	DimAccuracy     = "accuracy"
	DimClarity      = "clarity"
	DimRelevance    = "relevance"
	DimConsistency  = "consistency"
)

var dimensionOrder = []string{DimCompleteness, DimAccuracy, DimClarity, DimRelevance, DimConsistency}

// Result holds the rule-based quality scores for one pipeline run.
// Every dimension score and the overall score lie in [0,100].
type Result struct {
	GeneratedAt     time.Time          `json:"generated_at"`
	DimensionScores map[string]float64 `json:"dimension_scores"`
	OverallScore    float64            `json:"overall_score"`
	Grade           string             `json:"grade"`
	Recommendations []string           `json:"recommendations"`
}

// Evaluator applies the rule-based scoring dimensions. It holds no state
// between runs; aggregate tracking lives in MetricsTracker.
type Evaluator struct{}

func New() *Evaluator { return &Evaluator{} }

// recommendationThreshold is the dimension score below which the canned
// improvement hint for that dimension is emitted.
const recommendationThreshold = 80.0

var recommendationHints = map[string]string{
	DimCompleteness: "Ensure all identified change areas are covered in the extraction",
	DimAccuracy:     "Verify section references and topics against source document content",
	DimClarity:      "Add structure indicators such as First, Second, Additionally to improve summary clarity",
	DimRelevance:    "Replace generic topics and broad section references with specific citations",
	DimConsistency:  "Ensure all sections and topics are explicitly discussed in the summary",
}

// Evaluate scores record against both source documents and the structural
// map produced upstream. It never fails; a degenerate record simply scores
// low across the board.
func (e *Evaluator) Evaluate(record model.ChangeRecord, original, amendment document.Document, sm model.StructuralMap) Result {
	scores := map[string]float64{
		DimCompleteness: scoreCompleteness(record, sm),
		DimAccuracy:     scoreAccuracy(record, original, amendment),
		DimClarity:      scoreClarity(record),
		DimRelevance:    scoreRelevance(record),
		DimConsistency:  scoreConsistency(record, sm),
	}

	var sum float64
	for _, name := range dimensionOrder {
		sum += scores[name]
	}
	overall := sum / float64(len(dimensionOrder))

	res := Result{
		GeneratedAt:     time.Now().UTC(),
		DimensionScores: scores,
		OverallScore:    overall,
		Grade:           Grade(overall),
		Recommendations: recommendations(scores),
	}

	log.Debug().
		Float64("overall", res.OverallScore).
		Str("grade", res.Grade).
		Int("recommendations", len(res.Recommendations)).
		Msg("evaluation complete")

	return res
}

// Grade maps an overall score to a letter grade.
func Grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func recommendations(scores map[string]float64) []string {
	var hints []string
	seen := make(map[string]bool)
	for _, name := range dimensionOrder {
		if scores[name] >= recommendationThreshold {
			continue
		}
		hint := recommendationHints[name]
		if seen[hint] {
			continue
		}
		seen[hint] = true
		hints = append(hints, hint)
	}
	return hints
}

// scoreCompleteness measures how much of the flagged change surface the
// record covers, with a band adjustment for summary length.
func scoreCompleteness(record model.ChangeRecord, sm model.StructuralMap) float64 {
	if len(record.SectionsChanged) == 0 {
		return 0
	}

	score := 100.0
	if len(sm.CandidateChangeAreas) > 0 {
		covered := 0
		for _, area := range sm.CandidateChangeAreas {
			if labelListed(area, record.SectionsChanged) {
				covered++
			}
		}
		score *= float64(covered) / float64(len(sm.CandidateChangeAreas))
	}

	if len(record.TopicsTouched) == 0 {
		score *= 0.5
	}

	switch n := len(record.SummaryOfTheChange); {
	case n < 100:
		score *= 0.3
	case n < 200:
		score *= 0.7
	}

	return clamp(score)
}

var sectionKeyStrip = regexp.MustCompile(`[^\w\s.-]`)

// scoreAccuracy weighs verified section references (0.6) against topic
// keyword overlap with the source text (0.4).
func scoreAccuracy(record model.ChangeRecord, original, amendment document.Document) float64 {
	combined := strings.ToLower(original.RawText + " " + amendment.RawText)

	sectionAccuracy := 0.0
	if len(record.SectionsChanged) > 0 {
		found := 0
		for _, section := range record.SectionsChanged {
			key := sectionKeyStrip.ReplaceAllString(strings.ToLower(section), "")
			if key != "" && strings.Contains(combined, key) {
				found++
			}
		}
		sectionAccuracy = float64(found) / float64(len(record.SectionsChanged))
	}

	topicRelevance := 0.0
	if len(record.TopicsTouched) > 0 {
		found := 0
		for _, topic := range record.TopicsTouched {
			if anyKeywordIn(topic, combined) {
				found++
			}
		}
		topicRelevance = float64(found) / float64(len(record.TopicsTouched))
	}

	return clamp((sectionAccuracy*0.6 + topicRelevance*0.4) * 100)
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var structureIndicators = []string{
	"first", "second", "third", "finally",
	"additionally", "furthermore", "moreover",
	"however", "therefore", "consequently",
}

// scoreClarity looks at sentence structure: count, mean length, and
// discourse connectives.
func scoreClarity(record model.ChangeRecord) float64 {
	score := 100.0
	summary := record.SummaryOfTheChange

	var sentences []string
	for _, s := range sentenceSplit.Split(summary, -1) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 1 {
		score *= 0.7
	}

	if len(sentences) > 0 {
		words := 0
		for _, s := range sentences {
			words += len(strings.Fields(s))
		}
		avg := float64(words) / float64(len(sentences))
		if avg < 10 || avg > 50 {
			score *= 0.8
		}
	}

	lower := strings.ToLower(summary)
	hasStructure := false
	for _, ind := range structureIndicators {
		if strings.Contains(lower, ind) {
			hasStructure = true
			break
		}
	}
	if !hasStructure && len(sentences) > 2 {
		score *= 0.9
	}

	return clamp(score)
}

var genericTopics = []string{
	"general", "miscellaneous", "other", "various",
	"changes", "updates", "modifications",
}

var broadSectionRefs = []string{"all sections", "entire document", "whole contract"}

// scoreRelevance penalizes vague topics and catch-all section references.
func scoreRelevance(record model.ChangeRecord) float64 {
	score := 100.0

	if len(record.TopicsTouched) > 0 {
		generic := 0
		for _, topic := range record.TopicsTouched {
			lower := strings.ToLower(topic)
			for _, gen := range genericTopics {
				if strings.Contains(lower, gen) {
					generic++
					break
				}
			}
		}
		if generic > 0 {
			ratio := float64(generic) / float64(len(record.TopicsTouched))
			score *= 1 - ratio*0.3
		}
	}

	for _, section := range record.SectionsChanged {
		lower := strings.ToLower(strings.TrimSpace(section))
		for _, broad := range broadSectionRefs {
			if lower == broad {
				score *= 0.5
			}
		}
	}

	topics, sections := len(record.TopicsTouched), len(record.SectionsChanged)
	switch {
	case topics > sections*2:
		score *= 0.8
	case float64(topics) < float64(sections)*0.5:
		score *= 0.9
	}

	return clamp(score)
}

// scoreConsistency checks that the summary discusses the listed sections
// (0.4) and topics (0.3), and that the sections align with the document
// context from the first stage (0.3). Matching is fuzzy keyword overlap,
// not exact substring.
func scoreConsistency(record model.ChangeRecord, sm model.StructuralMap) float64 {
	summary := strings.ToLower(record.SummaryOfTheChange)
	context := strings.ToLower(sm.DocumentSummaryContext)

	sectionSummary := keywordFraction(record.SectionsChanged, summary)
	topicSummary := keywordFraction(record.TopicsTouched, summary)
	contextAlign := keywordFraction(record.SectionsChanged, context)

	return clamp((sectionSummary*0.4 + topicSummary*0.3 + contextAlign*0.3) * 100)
}

// keywordFraction reports the fraction of items with at least one
// significant word appearing in haystack.
func keywordFraction(items []string, haystack string) float64 {
	if len(items) == 0 {
		return 0
	}
	matched := 0
	for _, item := range items {
		if anyKeywordIn(item, haystack) {
			matched++
		}
	}
	return float64(matched) / float64(len(items))
}

// anyKeywordIn matches on any significant word, falling back to whole-item
// containment so short numeric labels like "2.1" still count.
func anyKeywordIn(item, haystack string) bool {
	lower := strings.ToLower(strings.TrimSpace(item))
	if lower == "" {
		return false
	}
	for _, word := range strings.Fields(lower) {
		if len(word) > 3 && strings.Contains(haystack, word) {
			return true
		}
	}
	return strings.Contains(haystack, lower)
}

// labelListed matches a candidate area against the recorded section labels,
// tolerating case and partial heading text in either direction.
func labelListed(area string, sections []string) bool {
	a := strings.ToLower(strings.TrimSpace(area))
	for _, section := range sections {
		s := strings.ToLower(strings.TrimSpace(section))
		if s == a || strings.Contains(s, a) || strings.Contains(a, s) {
			return true
		}
	}
	return false
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

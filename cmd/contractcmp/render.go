package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	sectionStyle = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func renderResult(res pipeline.RunResult) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("CHANGE EXTRACTION RESULTS"))
	b.WriteString("\n\n")

	if !res.Succeeded() {
		b.WriteString(failStyle.Render(fmt.Sprintf("Run failed at %s", res.FailedStage)))
		b.WriteString("\n\n")
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Sections changed (%d)", len(res.SectionsChanged))))
	b.WriteString("\n")
	for i, section := range res.SectionsChanged {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, section)
	}
	if len(res.SectionsChanged) == 0 {
		b.WriteString(dimStyle.Render("  none") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Topics touched (%d)", len(res.TopicsTouched))))
	b.WriteString("\n")
	for i, topic := range res.TopicsTouched {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, topic)
	}
	if len(res.TopicsTouched) == 0 {
		b.WriteString(dimStyle.Render("  none") + "\n")
	}

	if res.SummaryOfTheChange != "" {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Summary"))
		b.WriteString("\n" + res.SummaryOfTheChange + "\n")
	}

	if res.Evaluation != nil {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Quality"))
		eval := res.Evaluation.RuleBased
		gradeStyle := okStyle
		if eval.OverallScore < 70 {
			gradeStyle = failStyle
		} else if eval.OverallScore < 80 {
			gradeStyle = warnStyle
		}
		b.WriteString("\n  Overall: " + gradeStyle.Render(fmt.Sprintf("%.1f/100 (grade %s)", eval.OverallScore, eval.Grade)) + "\n")

		dims := make([]string, 0, len(eval.DimensionScores))
		for dim := range eval.DimensionScores {
			dims = append(dims, dim)
		}
		sort.Strings(dims)
		for _, dim := range dims {
			fmt.Fprintf(&b, "  %s: %.1f\n", dim, eval.DimensionScores[dim])
		}
		for _, hint := range eval.Recommendations {
			b.WriteString("  " + warnStyle.Render("→ "+hint) + "\n")
		}
		if llmEval := res.Evaluation.LLMBased; llmEval != nil {
			fmt.Fprintf(&b, "  Judge: legal %d/10, business %d/10, summary %d/10\n",
				llmEval.LegalAccuracy, llmEval.BusinessRelevance, llmEval.SummaryQuality)
		}
	}

	if len(res.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Warnings"))
		b.WriteString("\n")
		for _, w := range res.Warnings {
			b.WriteString("  " + warnStyle.Render("! "+w) + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render(fmt.Sprintf("tokens used: %d", res.Usage.TotalTokens)) + "\n")
	return b.String()
}

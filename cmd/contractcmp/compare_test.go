package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/evaluate"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

func TestDefaultPairName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "contract1 vs amendment1", defaultPairName("docs/contract1.jpg", "docs/amendment1.jpg"))
	assert.Equal(t, "a vs b", defaultPairName("a.txt", "b.pdf"))
}

func TestRenderResultSuccess(t *testing.T) {
	t.Parallel()

	res := pipeline.RunResult{
		SectionsChanged:    []string{"2.1", "4.2"},
		TopicsTouched:      []string{"Payment Timeline"},
		SummaryOfTheChange: "Payment window extended from 30 to 45 days.",
		Evaluation: &pipeline.EvaluationReport{
			RuleBased: evaluate.Result{
				GeneratedAt: time.Now(),
				DimensionScores: map[string]float64{
					evaluate.DimCompleteness: 90,
					evaluate.DimAccuracy:     95,
					evaluate.DimClarity:      85,
					evaluate.DimRelevance:    90,
					evaluate.DimConsistency:  80,
				},
				OverallScore: 88,
				Grade:        "B",
			},
		},
	}

	out := renderResult(res)
	assert.Contains(t, out, "2.1")
	assert.Contains(t, out, "Payment Timeline")
	assert.Contains(t, out, "88.0/100")
	assert.Contains(t, out, "grade B")
}

func TestRenderResultFailedRun(t *testing.T) {
	t.Parallel()

	res := pipeline.RunResult{FailedStage: "input_validation", Warnings: []string{"amendment: text too short"}}
	out := renderResult(res)

	assert.Contains(t, out, "input_validation")
	assert.Contains(t, out, "text too short")
	assert.Contains(t, out, "none")
}

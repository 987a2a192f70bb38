package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/evaluate"
)

// BatchItem is one named document pair in a batch run.
type BatchItem struct {
	Name  string
	Input Input
}

// BatchItemResult pairs an item with its outcome. Err is set only for
// hard failures; domain failures live inside Result.
type BatchItemResult struct {
	Name   string
	Result RunResult
	Err    error
}

// BatchRunner runs many independent document pairs concurrently. Pairs
// share no mutable state; each owns its documents and results.
type BatchRunner struct {
	orch        *Orchestrator
	concurrency int
}

// NewBatchRunner bounds parallelism at concurrency workers; values below
// one mean sequential.
func NewBatchRunner(orch *Orchestrator, concurrency int) *BatchRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchRunner{orch: orch, concurrency: concurrency}
}

// Run processes every item, continuing past per-item failures. Results
// come back in item order together with a tracker holding the aggregate
// scores of the successful runs.
func (b *BatchRunner) Run(ctx context.Context, items []BatchItem) ([]BatchItemResult, *evaluate.MetricsTracker, error) {
	results := make([]BatchItemResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, item := range items {
		g.Go(func() error {
			res, err := b.orch.Run(gctx, item.Input)
			results[i] = BatchItemResult{Name: item.Name, Result: res, Err: err}
			if err != nil {
				log.Error().Err(err).Str("pair", item.Name).Msg("pair failed")
			}
			// Per-item failures never cancel the batch.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, nil, fmt.Errorf("batch run: %w", err)
	}

	tracker := evaluate.NewMetricsTracker()
	for _, r := range results {
		if r.Err == nil && r.Result.Evaluation != nil {
			tracker.Add(r.Result.Evaluation.RuleBased)
		}
	}

	log.Info().
		Int("pairs", len(items)).
		Int("evaluated", tracker.Count()).
		Msg("batch complete")

	return results, tracker, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

// manifestEntry is one document pair in a batch manifest file.
type manifestEntry struct {
	Name      string `json:"name"`
	Original  string `json:"original"`
	Amendment string `json:"amendment"`
}

func batchCmd() *cobra.Command {
	var (
		manifestPath   string
		concurrency    int
		skipGuardrails bool
		noSave         bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare many contract pairs from a manifest file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			ctx := cmd.Context()

			raw, err := os.ReadFile(manifestPath)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			var entries []manifestEntry
			if err := json.Unmarshal(raw, &entries); err != nil {
				return fmt.Errorf("parse manifest: %w", err)
			}
			if len(entries) == 0 {
				return fmt.Errorf("manifest %s lists no pairs", manifestPath)
			}

			items := make([]pipeline.BatchItem, 0, len(entries))
			for i, entry := range entries {
				if entry.Original == "" || entry.Amendment == "" {
					return fmt.Errorf("manifest entry %d is missing original or amendment", i)
				}
				originalText, err := readDocument(ctx, cfg, entry.Original)
				if err != nil {
					return err
				}
				amendmentText, err := readDocument(ctx, cfg, entry.Amendment)
				if err != nil {
					return err
				}
				name := entry.Name
				if name == "" {
					name = defaultPairName(entry.Original, entry.Amendment)
				}
				items = append(items, pipeline.BatchItem{
					Name: name,
					Input: pipeline.Input{
						OriginalText:  originalText,
						AmendmentText: amendmentText,
						OriginalPath:  entry.Original,
						AmendmentPath: entry.Amendment,
					},
				})
			}

			orch, err := buildOrchestrator(ctx, cfg, skipGuardrails, false)
			if err != nil {
				return err
			}
			if concurrency <= 0 {
				concurrency = cfg.Pipeline.Concurrency
			}
			runner := pipeline.NewBatchRunner(orch, concurrency)

			results, tracker, err := runner.Run(ctx, items)
			if err != nil {
				return err
			}

			failures := 0
			for _, r := range results {
				switch {
				case r.Err != nil:
					failures++
					fmt.Printf("%s: %s\n", r.Name, failStyle.Render(r.Err.Error()))
				case !r.Result.Succeeded():
					failures++
					fmt.Printf("%s: %s\n", r.Name, failStyle.Render("failed at "+r.Result.FailedStage))
				default:
					eval := r.Result.Evaluation.RuleBased
					fmt.Printf("%s: %s\n", r.Name, okStyle.Render(fmt.Sprintf("%.1f/100 (grade %s)", eval.OverallScore, eval.Grade)))
				}
			}

			if !noSave {
				dbStore, closeFn, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer closeFn()
				for _, r := range results {
					if r.Err != nil {
						continue
					}
					if _, err := dbStore.SaveRun(ctx, r.Name, r.Result); err != nil {
						return err
					}
				}
			}

			if tracker.Count() > 0 {
				fmt.Println()
				fmt.Println(sectionStyle.Render("Batch quality"))
				avgs := tracker.AverageScores()
				fmt.Printf("  mean overall: %.1f across %d evaluated runs\n", avgs["overall"], tracker.Count())
				for _, rc := range tracker.CommonRecommendations(3) {
					fmt.Printf("  seen %dx: %s\n", rc.Count, rc.Hint)
				}
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d pairs failed", failures, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "JSON manifest listing document pairs")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel pairs (default from config)")
	cmd.Flags().BoolVar(&skipGuardrails, "skip-guardrails", false, "disable input and output validation")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record runs in history")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

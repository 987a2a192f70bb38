package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent comparison runs and aggregate quality",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, closeFn, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeFn()
			ctx := cmd.Context()

			runs, err := store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded yet")
				return nil
			}

			fmt.Println(headerStyle.Render("RUN HISTORY"))
			for _, r := range runs {
				status := okStyle.Render("ok")
				if !r.Succeeded {
					status = failStyle.Render(r.FailedStage)
				}
				score := "-"
				if r.OverallScore.Valid {
					score = fmt.Sprintf("%.1f (%s)", r.OverallScore.Float64, r.Grade.String)
				}
				fmt.Printf("  #%d %s  %s  %s  sections=%d score=%s\n",
					r.ID, r.CreatedAt, r.PairName, status, r.SectionCount, score)
			}

			avgs, err := store.AverageScores(ctx)
			if err != nil {
				return err
			}
			if len(avgs) > 0 {
				fmt.Println()
				fmt.Println(sectionStyle.Render("Average scores"))
				for _, dim := range []string{"completeness", "accuracy", "clarity", "relevance", "consistency", "overall"} {
					if score, ok := avgs[dim]; ok {
						fmt.Printf("  %s: %.1f\n", dim, score)
					}
				}
			}

			top, err := store.TopRecommendations(ctx, 5)
			if err != nil {
				return err
			}
			if len(top) > 0 {
				fmt.Println()
				fmt.Println(sectionStyle.Render("Most frequent recommendations"))
				for _, rc := range top {
					fmt.Printf("  %dx %s\n", rc.Count, rc.Hint)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to display")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

func compareCmd() *cobra.Command {
	var (
		originalPath   string
		amendmentPath  string
		outputPath     string
		pairName       string
		skipGuardrails bool
		enableLLMEval  bool
		noSave         bool
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a contract against its amendment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireAPIKey(cfg); err != nil {
				return err
			}
			ctx := cmd.Context()

			originalText, err := readDocument(ctx, cfg, originalPath)
			if err != nil {
				return err
			}
			amendmentText, err := readDocument(ctx, cfg, amendmentPath)
			if err != nil {
				return err
			}

			orch, err := buildOrchestrator(ctx, cfg, skipGuardrails, enableLLMEval)
			if err != nil {
				return err
			}

			res, err := orch.Run(ctx, pipeline.Input{
				OriginalText:  originalText,
				AmendmentText: amendmentText,
				OriginalPath:  originalPath,
				AmendmentPath: amendmentPath,
			})
			if err != nil {
				return err
			}

			fmt.Print(renderResult(res))

			if outputPath != "" {
				raw, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return fmt.Errorf("encode result: %w", err)
				}
				if err := os.WriteFile(outputPath, raw, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", outputPath, err)
				}
				fmt.Printf("\nResults saved to %s\n", outputPath)
			}

			if !noSave {
				store, closeFn, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer closeFn()
				name := pairName
				if name == "" {
					name = defaultPairName(originalPath, amendmentPath)
				}
				if _, err := store.SaveRun(ctx, name, res); err != nil {
					return err
				}
			}

			return res.Err()
		},
	}
	cmd.Flags().StringVar(&originalPath, "original", "", "original contract file (text, image, or pdf)")
	cmd.Flags().StringVar(&amendmentPath, "amendment", "", "amendment file (text, image, or pdf)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the full result JSON to this path")
	cmd.Flags().StringVar(&pairName, "name", "", "pair name recorded in run history")
	cmd.Flags().BoolVar(&skipGuardrails, "skip-guardrails", false, "disable input and output validation")
	cmd.Flags().BoolVar(&enableLLMEval, "enable-llm-eval", false, "add a model-judged quality rubric")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not record the run in history")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("amendment")
	return cmd
}

func defaultPairName(originalPath, amendmentPath string) string {
	orig := strings.TrimSuffix(filepath.Base(originalPath), filepath.Ext(originalPath))
	amend := strings.TrimSuffix(filepath.Base(amendmentPath), filepath.Ext(amendmentPath))
	return orig + " vs " + amend
}

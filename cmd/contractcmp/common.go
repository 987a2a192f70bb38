package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/config"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/db"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/docparse"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/guardrail"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/llm"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

func openStore(cfg config.Config) (*db.Store, func(), error) {
	storeDB, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, func() {}, err
	}
	return db.NewStore(storeDB), func() { _ = storeDB.Close() }, nil
}

func buildOrchestrator(ctx context.Context, cfg config.Config, skipGuardrails, enableLLMEval bool) (*pipeline.Orchestrator, error) {
	client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Provider.Model,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	opts := pipeline.Defaults()
	opts.SkipGuardrails = skipGuardrails
	opts.EnableLLMEval = enableLLMEval
	opts.MaxStageRetries = cfg.Pipeline.MaxStageRetries
	opts.ProviderMaxRetries = cfg.Provider.MaxRetries
	opts.InputLimits = inputLimits(cfg)
	return pipeline.New(client, opts), nil
}

func inputLimits(cfg config.Config) guardrail.InputLimits {
	limits := guardrail.DefaultInputLimits()
	if cfg.Guardrails.MinTextLength > 0 {
		limits.MinTextLength = cfg.Guardrails.MinTextLength
	}
	if cfg.Guardrails.MaxTextLength > 0 {
		limits.MaxTextLength = cfg.Guardrails.MaxTextLength
	}
	if cfg.Guardrails.MaxFileSizeMB > 0 {
		limits.MaxFileSizeMB = float64(cfg.Guardrails.MaxFileSizeMB)
	}
	if len(cfg.Guardrails.AllowedExtensions) > 0 {
		limits.AllowedExtensions = cfg.Guardrails.AllowedExtensions
	}
	return limits
}

// parsedExtensions are read through the vision model; anything else is
// treated as plain text.
var parsedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
}

// readDocument loads one contract file, transcribing scans with the vision
// parser when needed.
func readDocument(ctx context.Context, cfg config.Config, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !parsedExtensions[ext] {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(raw), nil
	}

	parser, err := docparse.NewVisionParser(ctx, docparse.VisionConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Provider.Model,
		Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return "", err
	}
	return parser.Parse(ctx, path)
}

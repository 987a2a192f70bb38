package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/config"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/guardrail"
)

func TestInputLimitsFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Guardrails = config.GuardrailConfig{
		MinTextLength:     80,
		MaxTextLength:     9000,
		MaxFileSizeMB:     5,
		AllowedExtensions: []string{".png"},
	}

	limits := inputLimits(cfg)
	assert.Equal(t, 80, limits.MinTextLength)
	assert.Equal(t, 9000, limits.MaxTextLength)
	assert.InDelta(t, 5.0, limits.MaxFileSizeMB, 1e-9)
	assert.Equal(t, []string{".png"}, limits.AllowedExtensions)
}

func TestInputLimitsZeroConfigKeepsDefaults(t *testing.T) {
	t.Parallel()

	limits := inputLimits(config.Config{})
	assert.Equal(t, guardrail.DefaultInputLimits(), limits)
}

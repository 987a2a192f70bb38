package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/config"
	"github.com/Asif-hussain/autonomous-contract-comparison-agents/internal/pipeline"
)

const apiKeyEnv = "GEMINI_API_KEY"

// loadConfig reads the optional config file, validates it against the
// schema, and fills defaults. The API key always comes from the environment.
func loadConfig() (config.Config, error) {
	var cfg config.Config

	path := viper.GetString("config")
	if path == "" {
		path = "contractcmp.json"
	}
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
		viper.SetConfigType("json")
		if err := viper.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
		settings := viper.AllSettings()
		delete(settings, "config")
		if err := config.ValidateSettings(settings); err != nil {
			return config.Config{}, err
		}
		if err := viper.Unmarshal(&cfg); err != nil {
			return config.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyDefaults()
	cfg.APIKey = os.Getenv(apiKeyEnv)
	return cfg, nil
}

// requireAPIKey guards the commands that reach the model provider.
func requireAPIKey(cfg config.Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%w: %s is not set; export it or add it to .env", pipeline.ErrConfiguration, apiKeyEnv)
	}
	return nil
}

// Package config provides configuration loading and management for the
// contract comparison pipeline.
package config

// Config is the root configuration.
type Config struct {
	Provider   ProviderConfig  `json:"provider"   mapstructure:"provider"`
	Guardrails GuardrailConfig `json:"guardrails" mapstructure:"guardrails"`
	Pipeline   PipelineConfig  `json:"pipeline"   mapstructure:"pipeline"`
	Storage    StorageConfig   `json:"storage"    mapstructure:"storage"`

	// APIKey comes from the environment, never from the config file.
	APIKey string `json:"-" mapstructure:"-"`
}

// ProviderConfig describes the model provider.
type ProviderConfig struct {
	Model          string `json:"model,omitempty"           mapstructure:"model"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" mapstructure:"timeout_seconds"`
	MaxRetries     int    `json:"max_retries,omitempty"     mapstructure:"max_retries"`
}

// GuardrailConfig overrides the input validation thresholds.
type GuardrailConfig struct {
	MinTextLength     int      `json:"min_text_length,omitempty"    mapstructure:"min_text_length"`
	MaxTextLength     int      `json:"max_text_length,omitempty"    mapstructure:"max_text_length"`
	MaxFileSizeMB     int      `json:"max_file_size_mb,omitempty"   mapstructure:"max_file_size_mb"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty" mapstructure:"allowed_extensions"`
}

// PipelineConfig defines run limits.
type PipelineConfig struct {
	MaxStageRetries int `json:"max_stage_retries,omitempty" mapstructure:"max_stage_retries"`
	Concurrency     int `json:"concurrency,omitempty"       mapstructure:"concurrency"`
}

// StorageConfig locates the run history database.
type StorageConfig struct {
	DBPath string `json:"db_path,omitempty" mapstructure:"db_path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Provider: ProviderConfig{
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		Guardrails: GuardrailConfig{
			MinTextLength: 50,
			MaxTextLength: 50000,
			MaxFileSizeMB: 10,
		},
		Pipeline: PipelineConfig{
			MaxStageRetries: 2,
			Concurrency:     4,
		},
		Storage: StorageConfig{
			DBPath: "contractcmp.db",
		},
	}
}

// ApplyDefaults fills zero values from Default.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Provider.Model == "" {
		c.Provider.Model = def.Provider.Model
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = def.Provider.TimeoutSeconds
	}
	if c.Provider.MaxRetries <= 0 {
		c.Provider.MaxRetries = def.Provider.MaxRetries
	}
	if c.Guardrails.MinTextLength <= 0 {
		c.Guardrails.MinTextLength = def.Guardrails.MinTextLength
	}
	if c.Guardrails.MaxTextLength <= 0 {
		c.Guardrails.MaxTextLength = def.Guardrails.MaxTextLength
	}
	if c.Guardrails.MaxFileSizeMB <= 0 {
		c.Guardrails.MaxFileSizeMB = def.Guardrails.MaxFileSizeMB
	}
	if c.Pipeline.MaxStageRetries <= 0 {
		c.Pipeline.MaxStageRetries = def.Pipeline.MaxStageRetries
	}
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = def.Pipeline.Concurrency
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = def.Storage.DBPath
	}
}

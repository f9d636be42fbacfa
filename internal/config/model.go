package config

import (
	"fmt"
	"os"
	"time"
)

// ModelConfig defines configuration for a single hosted model endpoint.
// The same structure backs the text model, the vision model and the embedding model.
type ModelConfig struct {
	Name       string        `mapstructure:"name"`         // Identifier used in logs and errors
	Provider   string        `mapstructure:"provider"`     // Provider type: "openai-compatible", "jina"
	Model      string        `mapstructure:"model"`        // Model name/ID
	APIKey     string        `mapstructure:"api_key"`      // API key (can be set directly or via env var)
	APIKeyEnv  string        `mapstructure:"api_key_env"`  // Environment variable name for API key
	BaseURL    string        `mapstructure:"base_url"`     // Base URL for the API
	BaseURLEnv string        `mapstructure:"base_url_env"` // Environment variable name for base URL
	Dimensions int           `mapstructure:"dimensions"`   // Embedding vector dimensions (embedding models only)
	Timeout    time.Duration `mapstructure:"timeout"`      // Per-request timeout
}

// ResolveEnvVars resolves environment variable references in the configuration.
// Direct values (APIKey, BaseURL) take precedence if already set.
func (c *ModelConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}

	if c.BaseURLEnv != "" && c.BaseURL == "" {
		if val := os.Getenv(c.BaseURLEnv); val != "" {
			c.BaseURL = val
		}
	}
}

// Validate checks that the model configuration has all required fields.
// Returns an error describing the first validation failure, or nil if valid.
func (c *ModelConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("model config: name is required")
	}
	if c.Provider == "" {
		return fmt.Errorf("model %q: provider is required", c.Name)
	}
	if c.Model == "" {
		return fmt.Errorf("model %q: model is required", c.Name)
	}

	switch c.Provider {
	case "openai-compatible":
	case "jina":
		if c.Dimensions <= 0 {
			return fmt.Errorf("model %q: dimensions must be positive", c.Name)
		}
	default:
		return fmt.Errorf("model %q: unknown provider %q", c.Name, c.Provider)
	}

	return nil
}

// ValidateWithAPIKey validates the configuration including API key requirement.
// Use this when the model will actually be called (not just configured).
func (c *ModelConfig) ValidateWithAPIKey() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		env := c.APIKeyEnv
		if env == "" {
			env = "environment"
		}
		return fmt.Errorf("model %q: api_key is required (set directly or via %s)", c.Name, env)
	}
	return nil
}

// Clone creates a copy of the model configuration.
func (c *ModelConfig) Clone() *ModelConfig {
	clone := *c
	return &clone
}

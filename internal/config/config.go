// Package config loads finance-parser settings from an optional YAML file
// and environment variables, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/finance-parser/internal/logger"
)

// Provider names the model backend.
const (
	ProviderNone   = "none"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config represents the top-level finance-parser.yaml configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Parsing ParsingConfig `yaml:"parsing"`
	Log     logger.Config `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Audit   AuditConfig   `yaml:"audit"`
}

// LLMConfig selects and parameterises the model tier.
type LLMConfig struct {
	Provider        string  `yaml:"provider"`
	Model           string  `yaml:"model"`
	APIKey          string  `yaml:"api_key,omitempty"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	Temperature     float32 `yaml:"temperature"`
	MaxOutputTokens int32   `yaml:"max_output_tokens"`
}

// ParsingConfig holds extraction settings.
type ParsingConfig struct {
	DefaultCurrency string `yaml:"default_currency"`
}

// ServerConfig controls the HTTP API and its job workers.
type ServerConfig struct {
	Port      int `yaml:"port"`
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// StorageConfig points at the bucket bare object names are resolved against.
type StorageConfig struct {
	Bucket string `yaml:"bucket"`
}

// AuditConfig enables the BigQuery parse-run audit table.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ProjectID string `yaml:"project_id"`
	Dataset   string `yaml:"dataset"`
	Table     string `yaml:"table"`
}

// Default returns a Config with the model tier disabled.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:        ProviderNone,
			Temperature:     0.1,
			MaxOutputTokens: 4096,
		},
		Parsing: ParsingConfig{DefaultCurrency: "USD"},
		Log:     logger.Config{Level: "info", Format: "console"},
		Server:  ServerConfig{Port: 8080, Workers: 4, QueueSize: 100},
		Audit:   AuditConfig{Dataset: "finance", Table: "parse_runs"},
	}
}

// Load reads a YAML file over the defaults. An empty path skips the file.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.MaxOutputTokens = getEnvAsInt32("LLM_MAX_OUTPUT_TOKENS", c.LLM.MaxOutputTokens)

	c.LLM.APIKey = getEnv("LLM_API_KEY", c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case ProviderGemini:
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		case ProviderOpenAI:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	c.Parsing.DefaultCurrency = getEnv("DEFAULT_CURRENCY", c.Parsing.DefaultCurrency)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Server.Workers = getEnvAsInt("WORKERS", c.Server.Workers)
	c.Server.QueueSize = getEnvAsInt("QUEUE_SIZE", c.Server.QueueSize)
	c.Storage.Bucket = getEnv("GCS_BUCKET", c.Storage.Bucket)
	c.Audit.Enabled = getEnvAsBool("AUDIT_ENABLED", c.Audit.Enabled)
	c.Audit.ProjectID = getEnv("GOOGLE_CLOUD_PROJECT", c.Audit.ProjectID)
	c.Audit.Dataset = getEnv("AUDIT_DATASET", c.Audit.Dataset)
	c.Audit.Table = getEnv("AUDIT_TABLE", c.Audit.Table)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderNone, "":
	case ProviderGemini, ProviderOpenAI:
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("llm.api_key is required for provider %s", c.LLM.Provider))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", c.LLM.Provider))
	}
	if c.Server.Workers <= 0 {
		errs = append(errs, errors.New("server.workers must be positive"))
	}
	if c.Server.QueueSize <= 0 {
		errs = append(errs, errors.New("server.queue_size must be positive"))
	}
	if c.Audit.Enabled && c.Audit.ProjectID == "" {
		errs = append(errs, errors.New("audit.project_id (or GOOGLE_CLOUD_PROJECT) is required when audit is enabled"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

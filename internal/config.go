package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default model identifiers for the pipeline stages.
const (
	DefaultPlannerModel   = "claude-3-5-haiku-20241022"
	DefaultGeneratorModel = "claude-sonnet-4-20250514"
	DefaultReviewerModel  = "claude-3-5-haiku-20241022"
)

// Config holds all runtime configuration. It is constructed once at process
// start and passed into the server, runner and backend client; request
// handling never reads ambient environment state.
type Config struct {
	AppName      string `yaml:"app_name"`
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"`

	AnthropicKey string `yaml:"anthropic_key"`

	PlannerModel   string `yaml:"planner_model"`
	GeneratorModel string `yaml:"generator_model"`
	ReviewerModel  string `yaml:"reviewer_model"`

	// RequestTimeout bounds one generation request end to end.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ChunkSize is the fixed size of streamed file content chunks.
	ChunkSize int `yaml:"chunk_size"`
}

// LoadConfig builds a Config from environment variables with defaults.
func LoadConfig() *Config {
	cfg := &Config{
		AppName:        envOr("V0GEN_APP_NAME", "v0gen"),
		Addr:           envOr("V0GEN_ADDR", ":8000"),
		DatabasePath:   envOr("V0GEN_DB", "v0gen.db"),
		AnthropicKey:   os.Getenv("ANTHROPIC_API_KEY"),
		PlannerModel:   envOr("V0GEN_PLANNER_MODEL", DefaultPlannerModel),
		GeneratorModel: envOr("V0GEN_GENERATOR_MODEL", DefaultGeneratorModel),
		ReviewerModel:  envOr("V0GEN_REVIEWER_MODEL", DefaultReviewerModel),
		RequestTimeout: 120 * time.Second,
		ChunkSize:      100,
	}

	if v := os.Getenv("V0GEN_REQUEST_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

// LoadConfigFile overlays values from a YAML file onto an env-derived Config.
// Zero values in the file leave the corresponding setting untouched.
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if file.AppName != "" {
		cfg.AppName = file.AppName
	}
	if file.Addr != "" {
		cfg.Addr = file.Addr
	}
	if file.DatabasePath != "" {
		cfg.DatabasePath = file.DatabasePath
	}
	if file.AnthropicKey != "" {
		cfg.AnthropicKey = file.AnthropicKey
	}
	if file.PlannerModel != "" {
		cfg.PlannerModel = file.PlannerModel
	}
	if file.GeneratorModel != "" {
		cfg.GeneratorModel = file.GeneratorModel
	}
	if file.ReviewerModel != "" {
		cfg.ReviewerModel = file.ReviewerModel
	}
	if file.RequestTimeout > 0 {
		cfg.RequestTimeout = file.RequestTimeout
	}
	if file.ChunkSize > 0 {
		cfg.ChunkSize = file.ChunkSize
	}

	return cfg, nil
}

// Validate reports configuration problems. A missing API key is not an
// error: the server falls back to the scripted client.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	return nil
}

// LiveBackend reports whether a model API key is configured.
func (c *Config) LiveBackend() bool {
	return c.AnthropicKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

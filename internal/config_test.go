package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"V0GEN_APP_NAME", "V0GEN_ADDR", "V0GEN_DB", "ANTHROPIC_API_KEY",
		"V0GEN_PLANNER_MODEL", "V0GEN_GENERATOR_MODEL", "V0GEN_REVIEWER_MODEL",
		"V0GEN_REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()
	if cfg.Addr != ":8000" {
		t.Errorf("Addr = %q, want :8000", cfg.Addr)
	}
	if cfg.DatabasePath != "v0gen.db" {
		t.Errorf("DatabasePath = %q, want v0gen.db", cfg.DatabasePath)
	}
	if cfg.GeneratorModel != DefaultGeneratorModel {
		t.Errorf("GeneratorModel = %q, want %q", cfg.GeneratorModel, DefaultGeneratorModel)
	}
	if cfg.RequestTimeout != 120*time.Second {
		t.Errorf("RequestTimeout = %v, want 120s", cfg.RequestTimeout)
	}
	if cfg.ChunkSize != 100 {
		t.Errorf("ChunkSize = %d, want 100", cfg.ChunkSize)
	}
	if cfg.LiveBackend() {
		t.Error("LiveBackend() = true without an API key")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("V0GEN_ADDR", ":9999")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("V0GEN_GENERATOR_MODEL", "claude-test-model")
	t.Setenv("V0GEN_REQUEST_TIMEOUT", "30")

	cfg := LoadConfig()
	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", cfg.Addr)
	}
	if !cfg.LiveBackend() {
		t.Error("LiveBackend() = false with an API key set")
	}
	if cfg.GeneratorModel != "claude-test-model" {
		t.Errorf("GeneratorModel = %q", cfg.GeneratorModel)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("V0GEN_ADDR", ":8000")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":7777\"\nchunk_size: 50\nplanner_model: yaml-model\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Addr != ":7777" {
		t.Errorf("Addr = %q, want file override :7777", cfg.Addr)
	}
	if cfg.ChunkSize != 50 {
		t.Errorf("ChunkSize = %d, want 50", cfg.ChunkSize)
	}
	if cfg.PlannerModel != "yaml-model" {
		t.Errorf("PlannerModel = %q, want yaml-model", cfg.PlannerModel)
	}
	// Unset file fields keep env-derived values.
	if cfg.DatabasePath == "" {
		t.Error("DatabasePath lost its default")
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	if _, err := LoadConfigFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadConfigFile() should fail for a missing file")
	}
}

func TestLoadConfigFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("LoadConfigFile() should fail for invalid YAML")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing key is valid", func(c *Config) { c.AnthropicKey = "" }, false},
		{"empty addr", func(c *Config) { c.Addr = "" }, true},
		{"empty db path", func(c *Config) { c.DatabasePath = "" }, true},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

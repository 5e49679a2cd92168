package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	AutoReconnect bool          `mapstructure:"auto_reconnect"`
	Logging       loggingConfig `mapstructure:"logging"`
}

type loggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "livefeed.yml", `
base_url: http://localhost:9000
token: abc123
auto_reconnect: true
logging:
  level: debug
  format: json
`)

	var cfg testConfig
	if err := Load("livefeed", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if !cfg.AutoReconnect {
		t.Error("auto_reconnect should be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "livefeed.yml", "base_url: http://from-file\n")

	t.Setenv("LIVEFEED_BASE_URL", "http://from-env")

	var cfg testConfig
	if err := Load("livefeed", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://from-env" {
		t.Errorf("base_url = %q, want env override", cfg.BaseURL)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("LIVEFEED_BASE_URL", "http://env-only:8080")
	t.Setenv("LIVEFEED_LOGGING_LEVEL", "warn")

	var cfg testConfig
	if err := Load("livefeed", &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BaseURL != "http://env-only:8080" {
		t.Errorf("base_url = %q", cfg.BaseURL)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("logging.level = %q", cfg.Logging.Level)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "LIVEFEED_TOKEN=secret-from-dotenv\n")

	var cfg testConfig
	if err := Load("livefeed", &cfg, WithEnvFile(envPath)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Token != "secret-from-dotenv" {
		t.Errorf("token = %q", cfg.Token)
	}
	os.Unsetenv("LIVEFEED_TOKEN")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	var cfg testConfig
	if err := Load("livefeed", &cfg, WithConfigFile("/does/not/exist.yml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestStructKeys(t *testing.T) {
	keys := structKeys(nil, "")
	if keys != nil {
		t.Errorf("nil type should yield no keys, got %v", keys)
	}
}

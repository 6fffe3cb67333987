package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != 3001 {
		t.Errorf("default port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("default model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout() != 60*time.Second {
		t.Errorf("default timeout = %v", cfg.OpenAI.Timeout())
	}
	if cfg.Optimization.MaxIterations != 3 {
		t.Errorf("default max iterations = %d, want 3", cfg.Optimization.MaxIterations)
	}
	if cfg.Analysis.DefaultLocale != "international" {
		t.Errorf("default locale = %q", cfg.Analysis.DefaultLocale)
	}
	if cfg.Browser.Enabled {
		t.Error("browser inspection must be off by default")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: 8080
openai:
  model: gpt-4o-mini
  temperature: 0.2
optimization:
  maxIterations: 5
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Temperature != 0.2 {
		t.Errorf("temperature = %f", cfg.OpenAI.Temperature)
	}
	if cfg.Optimization.MaxIterations != 5 {
		t.Errorf("max iterations = %d, want 5", cfg.Optimization.MaxIterations)
	}
	// Untouched sections keep their defaults.
	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base url = %q", cfg.OpenAI.BaseURL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
openai:
  apiKey: from-file
  model: gpt-4o-mini
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "from-env")
	t.Setenv(portEnv, "9999")

	cfg := Load()

	if cfg.OpenAI.APIKey != "from-env" {
		t.Errorf("env must win over file, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("file value without env override must stick, got %q", cfg.OpenAI.Model)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("port = %d, want 9999", cfg.Server.Port)
	}
}

func TestLoad_ChromeURLEnablesBrowser(t *testing.T) {
	t.Setenv(chromeURLEnv, "http://localhost:9222")

	cfg := Load()

	if !cfg.Browser.Enabled {
		t.Error("setting CHROME_URL must enable browser inspection")
	}
	if cfg.Browser.ChromeURL != "http://localhost:9222" {
		t.Errorf("chrome url = %q", cfg.Browser.ChromeURL)
	}
}

func TestLoad_BadPortIgnored(t *testing.T) {
	t.Setenv(portEnv, "not-a-port")

	cfg := Load()

	if cfg.Server.Port != 3001 {
		t.Errorf("invalid PORT must keep default, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	cfg := Load()

	if cfg.Server.Port != 3001 {
		t.Errorf("missing file must fall back to defaults, got port %d", cfg.Server.Port)
	}
}

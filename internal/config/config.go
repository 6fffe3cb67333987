// Package config loads the application configuration from an optional
// YAML file with environment overrides on top. Only this package reads
// the environment; everything downstream receives explicit structs.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "GEOSCAN_CONFIG"
	portEnv             = "PORT"
	openAIAPIKeyEnv     = "OPENAI_API_KEY"
	openAIModelEnv      = "OPENAI_MODEL"
	brandfetchAPIKeyEnv = "BRANDFETCH_API_KEY"
	chromeURLEnv        = "CHROME_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	OpenAI       OpenAIConfig       `yaml:"openai"`
	Brandfetch   BrandfetchConfig   `yaml:"brandfetch"`
	Browser      BrowserConfig      `yaml:"browser"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Optimization OptimizationConfig `yaml:"optimization"`
}

// ServerConfig describes the HTTP API listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig describes the side metrics listener.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// OpenAIConfig defines how to contact the LLM provider.
type OpenAIConfig struct {
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"apiKey"`
	Temperature    float64 `yaml:"temperature"`
	MaxTokens      int     `yaml:"maxTokens"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
}

// Timeout resolves the request timeout.
func (c OpenAIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BrandfetchConfig defines how to contact the brand metadata API.
type BrandfetchConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

// BrowserConfig wires the headless-Chrome inspector. An empty
// ChromeURL makes the inspector launch its own local Chrome; Enabled
// false selects the static HTML inspector instead.
type BrowserConfig struct {
	Enabled   bool   `yaml:"enabled"`
	ChromeURL string `yaml:"chromeUrl"`
}

// AnalysisConfig tunes question generation and the agent fan-out.
type AnalysisConfig struct {
	DefaultLocale      string `yaml:"defaultLocale"`
	MinRecommendations int    `yaml:"minRecommendations"`
	MaxRecommendations int    `yaml:"maxRecommendations"`
}

// OptimizationConfig tunes the question-optimization loop.
type OptimizationConfig struct {
	MaxIterations int `yaml:"maxIterations"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("cannot read config file, falling back to defaults", "path", path, "error", err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("cannot parse config file, falling back to defaults", "path", path, "error", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(brandfetchAPIKeyEnv); v != "" {
		c.Brandfetch.APIKey = v
	}

	if v := os.Getenv(chromeURLEnv); v != "" {
		c.Browser.ChromeURL = v
		c.Browser.Enabled = true
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port > 0 {
		base.Server.Port = override.Server.Port
	}

	if override.Metrics.Port > 0 {
		base.Metrics.Port = override.Metrics.Port
	}
	base.Metrics.Enabled = base.Metrics.Enabled || override.Metrics.Enabled

	if override.OpenAI.BaseURL != "" {
		base.OpenAI.BaseURL = override.OpenAI.BaseURL
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.Temperature > 0 {
		base.OpenAI.Temperature = override.OpenAI.Temperature
	}
	if override.OpenAI.MaxTokens > 0 {
		base.OpenAI.MaxTokens = override.OpenAI.MaxTokens
	}
	if override.OpenAI.TimeoutSeconds > 0 {
		base.OpenAI.TimeoutSeconds = override.OpenAI.TimeoutSeconds
	}

	if override.Brandfetch.BaseURL != "" {
		base.Brandfetch.BaseURL = override.Brandfetch.BaseURL
	}
	if override.Brandfetch.APIKey != "" {
		base.Brandfetch.APIKey = override.Brandfetch.APIKey
	}

	if override.Browser.ChromeURL != "" {
		base.Browser.ChromeURL = override.Browser.ChromeURL
	}
	base.Browser.Enabled = base.Browser.Enabled || override.Browser.Enabled

	if override.Analysis.DefaultLocale != "" {
		base.Analysis.DefaultLocale = override.Analysis.DefaultLocale
	}
	if override.Analysis.MinRecommendations > 0 {
		base.Analysis.MinRecommendations = override.Analysis.MinRecommendations
	}
	if override.Analysis.MaxRecommendations > 0 {
		base.Analysis.MaxRecommendations = override.Analysis.MaxRecommendations
	}

	if override.Optimization.MaxIterations > 0 {
		base.Optimization.MaxIterations = override.Optimization.MaxIterations
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 3001},
		Metrics: MetricsConfig{Enabled: false, Port: 9090},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o",
			Temperature:    0.7,
			MaxTokens:      1500,
			TimeoutSeconds: 60,
		},
		Brandfetch: BrandfetchConfig{
			BaseURL: "https://api.brandfetch.io/v2",
		},
		Browser: BrowserConfig{Enabled: false},
		Analysis: AnalysisConfig{
			DefaultLocale:      "international",
			MinRecommendations: 3,
			MaxRecommendations: 5,
		},
		Optimization: OptimizationConfig{MaxIterations: 3},
	}
}

// Package config loads agent configuration from YAML files with environment
// overrides. Discovery walks up from the starting directory and prefers
// config.local.yaml over config.yaml; defaults apply when neither exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Agent   AgentConfig   `yaml:"agent"`
	Tools   ToolsConfig   `yaml:"tools"`
	Memory  MemoryConfig  `yaml:"memory"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects the backend model and its sampling parameters.
type ModelConfig struct {
	Provider    string  `yaml:"provider" env:"SAMA_PROVIDER"`
	Name        string  `yaml:"name" env:"SAMA_MODEL"`
	APIKey      string  `yaml:"api_key" env:"SAMA_API_KEY"`
	BaseURL     string  `yaml:"base_url" env:"SAMA_BASE_URL"`
	Temperature float64 `yaml:"temperature" env:"SAMA_TEMPERATURE"`
	MaxTokens   int     `yaml:"max_tokens" env:"SAMA_MAX_TOKENS"`
}

// AgentConfig controls loop behavior and the system prompt.
type AgentConfig struct {
	Name          string `yaml:"name" env:"SAMA_AGENT_NAME"`
	Language      string `yaml:"language" env:"SAMA_LANGUAGE"`
	MaxIterations int    `yaml:"max_iterations" env:"SAMA_MAX_ITERATIONS"`
	Workspace     string `yaml:"workspace" env:"SAMA_WORKSPACE"`
}

// ToolsConfig holds per-tool settings.
type ToolsConfig struct {
	Shell  ShellConfig  `yaml:"shell"`
	File   FileConfig   `yaml:"file"`
	Python PythonConfig `yaml:"python"`
	Search SearchConfig `yaml:"search"`
}

// ShellConfig controls the shell tool policy.
type ShellConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Policy         string   `yaml:"policy" env:"SAMA_SHELL_POLICY"`
	Whitelist      []string `yaml:"whitelist"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// FileConfig controls the file tools.
type FileConfig struct {
	Enabled     bool     `yaml:"enabled"`
	AllowedDirs []string `yaml:"allowed_dirs"`
}

// PythonConfig controls the python tool.
type PythonConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Interpreter    string `yaml:"interpreter" env:"SAMA_PYTHON_INTERPRETER"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// SearchConfig controls the web search tool.
type SearchConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxResults int  `yaml:"max_results"`
}

// MemoryConfig bounds conversation memory and tool result feedback.
type MemoryConfig struct {
	MaxMessages    int `yaml:"max_messages" env:"SAMA_MAX_MESSAGES"`
	MaxResultChars int `yaml:"max_result_chars"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level" env:"SAMA_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Agent: AgentConfig{
			Name:          "SAMA",
			Language:      "en",
			MaxIterations: 10,
			Workspace:     ".",
		},
		Tools: ToolsConfig{
			Shell: ShellConfig{
				Enabled:        true,
				Policy:         "whitelist",
				TimeoutSeconds: 30,
			},
			File: FileConfig{
				Enabled:     true,
				AllowedDirs: []string{"."},
			},
			Python: PythonConfig{
				Enabled:        true,
				Interpreter:    "python3",
				TimeoutSeconds: 30,
			},
			Search: SearchConfig{
				Enabled:    true,
				MaxResults: 5,
			},
		},
		Memory: MemoryConfig{
			MaxMessages:    100,
			MaxResultChars: 20000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file and uses defaults
// plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	cfg.Model.APIKey = resolveAPIKey(cfg.Model.APIKey)
	return cfg, nil
}

// Discover walks up from startDir looking for config.local.yaml, then
// config.yaml, and loads the first file found. With no file it returns the
// defaults with environment overrides applied.
func Discover(startDir string) (*Config, error) {
	path := findConfigFile(startDir)
	return Load(path)
}

func findConfigFile(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range []string{"config.local.yaml", "config.yaml"} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// apiKeyEnvVars is the fallback chain consulted when no key is configured.
var apiKeyEnvVars = []string{
	"OPENAI_API_KEY",
	"KIMI_API_KEY",
	"MOONSHOT_API_KEY",
	"API_KEY",
}

func resolveAPIKey(configured string) string {
	if configured != "" {
		return configured
	}
	for _, name := range apiKeyEnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

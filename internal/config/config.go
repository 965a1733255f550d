// Package config loads pagewright configuration from
// <workspace>/.pagewright/config.yaml with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all pagewright configuration.
type Config struct {
	// Workspace is the content workspace root. Not read from YAML; set by
	// the caller (CLI flag or cwd) before Load resolves relative paths.
	Workspace string `yaml:"-"`

	LLM        LLMConfig        `yaml:"llm"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Validation ValidationConfig `yaml:"validation"`
	Publish    PublishConfig    `yaml:"publish"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LLMConfig configures the model provider shared by all pipeline roles.
type LLMConfig struct {
	Provider string `yaml:"provider"` // gemini, relay
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
}

// PipelineConfig configures the orchestrator.
type PipelineConfig struct {
	// MaxAttempts bounds the Build+Test loop.
	MaxAttempts int `yaml:"max_attempts"`
	// MaxConcurrent bounds parallel runs in batch mode.
	MaxConcurrent int `yaml:"max_concurrent"`
	// PromptsDir holds role prompt overrides; empty means built-ins only.
	PromptsDir string `yaml:"prompts_dir"`
}

// ValidationConfig configures the Tester stage.
type ValidationConfig struct {
	// SemanticReview enables the LLM review tier. Structural and pattern
	// checks always run; this tier can only add findings.
	SemanticReview bool `yaml:"semantic_review"`
	// MaxCanvasWidth is the largest fixed canvas width accepted before the
	// validator flags CANVAS_TOO_LARGE.
	MaxCanvasWidth int `yaml:"max_canvas_width"`
}

// PublishConfig configures where finished pages land.
type PublishConfig struct {
	// PagesDir is the output directory, relative to the workspace.
	PagesDir string    `yaml:"pages_dir"`
	Git      GitConfig `yaml:"git"`
}

// GitConfig configures optional commit-on-publish.
type GitConfig struct {
	Enabled bool   `yaml:"enabled"`
	Author  string `yaml:"author"`
	Email   string `yaml:"email"`
}

// LoggingConfig mirrors the logging package's file-logger settings.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Timeout:  "120s",
		},
		Pipeline: PipelineConfig{
			MaxAttempts:   3,
			MaxConcurrent: 2,
		},
		Validation: ValidationConfig{
			SemanticReview: false,
			MaxCanvasWidth: 800,
		},
		Publish: PublishConfig{
			PagesDir: "pages",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".pagewright", "config.yaml")
}

// Load loads configuration for a workspace. A missing config file is not an
// error; defaults plus environment overrides apply.
func Load(workspace string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Workspace = workspace

	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration back to the workspace.
func (c *Config) Save() error {
	path := Path(c.Workspace)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("PAGEWRIGHT_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
		if c.LLM.Provider == "" {
			c.LLM.Provider = "gemini"
		}
	}
	if provider := os.Getenv("PAGEWRIGHT_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}
	if model := os.Getenv("PAGEWRIGHT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if url := os.Getenv("PAGEWRIGHT_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// PagesPath resolves the publish directory against the workspace.
func (c *Config) PagesPath() string {
	if filepath.IsAbs(c.Publish.PagesDir) {
		return c.Publish.PagesDir
	}
	return filepath.Join(c.Workspace, c.Publish.PagesDir)
}

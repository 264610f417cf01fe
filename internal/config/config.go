// Package config provides configuration management for the knowledge base sync.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingSource            = errors.New("source.subdomain or source.base_url is required")
	ErrMissingEmail             = errors.New("source.email is required")
	ErrMissingToken             = errors.New("source.token is required (or set the variable named by source.token_env)")
	ErrInvalidPerPage           = errors.New("source.per_page must be between 1 and 100")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
	ErrMissingOutputPath        = errors.New("output.path is required")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidBufferSize        = errors.New("advanced.buffer_size_kb must be at least 1")
)

// Default values.
const (
	DefaultLocale     = "en-us"
	DefaultTokenEnv   = "ZENDESK_TOKEN"
	DefaultPerPage    = 100
	DefaultOutputPath = "zendesk-kb-consolidated.md"
	DefaultTimeLayout = "2006-01-02 15:04"
)

// Config represents the complete sync configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Output   OutputConfig   `yaml:"output"`
	Document DocumentConfig `yaml:"document"`
	Logging  LoggingConfig  `yaml:"logging"`
	Features FeaturesConfig `yaml:"features"`
	Advanced AdvancedConfig `yaml:"advanced"`
}

// SourceConfig describes the Help Center to read from.
type SourceConfig struct {
	Subdomain string      `yaml:"subdomain"`
	Locale    string      `yaml:"locale"`
	BaseURL   string      `yaml:"base_url"`
	Email     string      `yaml:"email"`
	Token     string      `yaml:"token"`
	TokenEnv  string      `yaml:"token_env"`
	Retry     RetryPolicy `yaml:"retry"`
	PerPage   int         `yaml:"per_page"`
}

// APIBaseURL returns the Help Center API root, e.g.
// https://acme.zendesk.com/api/v2/help_center/en-us.
func (s *SourceConfig) APIBaseURL() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}

	return fmt.Sprintf("https://%s.zendesk.com/api/v2/help_center/%s", s.Subdomain, s.Locale)
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// OutputConfig defines where and how the document is written.
type OutputConfig struct {
	Path         string `yaml:"path"`
	CreateBackup bool   `yaml:"create_backup"`
	Sign         bool   `yaml:"sign"`
}

// DocumentConfig holds the fixed text of the rendered document.
type DocumentConfig struct {
	Title       string `yaml:"title"`
	SourceLabel string `yaml:"source_label"`
	RefreshNote string `yaml:"refresh_note"`
	TimeLayout  string `yaml:"time_layout"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FeaturesConfig contains feature flags.
type FeaturesConfig struct {
	ValidateOutput bool `yaml:"validate_output"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	BufferSizeKb               int  `yaml:"buffer_size_kb"`
	ContinueOnValidationErrors bool `yaml:"continue_on_validation_errors"`
}

// Default returns a configuration with every optional field filled in.
// Source identity and credentials are left empty.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Locale:   DefaultLocale,
			TokenEnv: DefaultTokenEnv,
			PerPage:  DefaultPerPage,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Document: DocumentConfig{
			TimeLayout: DefaultTimeLayout,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Features: FeaturesConfig{
			ValidateOutput: true,
		},
		Advanced: AdvancedConfig{
			BufferSizeKb: 10240,
		},
	}
}

// ReadFile parses a YAML file on top of Default without validating it, so that
// callers can apply overrides first.
func ReadFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads configuration from a YAML file on top of Default,
// resolves the API token from the environment and validates the result.
func LoadConfig(filepath string) (*Config, error) {
	cfg, err := ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	cfg.ResolveToken(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ResolveToken fills Source.Token from the environment when it is not set in the file.
func (c *Config) ResolveToken(getenv func(string) string) {
	if c.Source.Token != "" || c.Source.TokenEnv == "" {
		return
	}

	c.Source.Token = getenv(c.Source.TokenEnv)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Check source config
	if c.Source.Subdomain == "" && c.Source.BaseURL == "" {
		return ErrMissingSource
	}

	if c.Source.Email == "" {
		return ErrMissingEmail
	}

	if c.Source.Token == "" {
		return ErrMissingToken
	}

	if c.Source.PerPage < 1 || c.Source.PerPage > 100 {
		return ErrInvalidPerPage
	}

	// Validate retry policy
	if c.Source.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Source.Retry.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if c.Source.Retry.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if c.Source.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	// Validate output config
	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	// Validate logging config
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	if c.Advanced.BufferSizeKb < 1 {
		return ErrInvalidBufferSize
	}

	return nil
}

// SourceLabel returns the label shown in the document preamble.
func (c *Config) SourceLabel() string {
	if c.Document.SourceLabel != "" {
		return c.Document.SourceLabel
	}

	if c.Source.Subdomain != "" {
		return fmt.Sprintf("https://%s.zendesk.com/hc/%s", c.Source.Subdomain, c.Source.Locale)
	}

	return c.Source.APIBaseURL()
}

// GetRetryDelay returns the backoff to wait after the given failed attempt (1-based).
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	// Cap at max delay
	if rp.MaxDelayMs > 0 && int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// String returns a string representation of the config without credentials.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s, Email: %s, MaxAttempts: %d, Output: %s}",
		c.Source.APIBaseURL(),
		c.Source.Email,
		c.Source.Retry.MaxAttempts,
		c.Output.Path,
	)
}

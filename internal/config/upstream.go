package config

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/helsedok/dokjournal/internal/upstream"
)

// Environment variable names for upstream configuration.
const (
	EnvAuthTokenURL     = "AUTH_TOKEN_URL"
	EnvAuthClientID     = "AUTH_CLIENT_ID"
	EnvAuthClientSecret = "AUTH_CLIENT_SECRET"
	EnvArchiveBaseURL   = "ARCHIVE_BASE_URL"
)

// RetryConfig describes the exponential backoff policy for transient
// upstream failures.
type RetryConfig struct {
	InitialDelay string  `toml:"initial_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxAttempts  int     `toml:"max_attempts"`
}

// Policy converts the configuration to an upstream retry policy.
func (c *RetryConfig) Policy() upstream.Policy {
	delay, _ := time.ParseDuration(c.InitialDelay)
	return upstream.Policy{
		InitialDelay: delay,
		Multiplier:   c.Multiplier,
		MaxAttempts:  c.MaxAttempts,
	}
}

// Finalize applies defaults and validates the retry configuration.
func (c *RetryConfig) Finalize() error {
	if c.InitialDelay == "" {
		c.InitialDelay = "200ms"
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}

	if _, err := time.ParseDuration(c.InitialDelay); err != nil {
		return fmt.Errorf("invalid initial_delay: %w", err)
	}
	if c.Multiplier < 1 {
		return fmt.Errorf("multiplier must be at least 1, got %v", c.Multiplier)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *RetryConfig) Merge(overlay *RetryConfig) {
	if overlay.InitialDelay != "" {
		c.InitialDelay = overlay.InitialDelay
	}
	if overlay.Multiplier != 0 {
		c.Multiplier = overlay.Multiplier
	}
	if overlay.MaxAttempts != 0 {
		c.MaxAttempts = overlay.MaxAttempts
	}
}

// AuthConfig contains credential provider configuration.
type AuthConfig struct {
	TokenURL     string   `toml:"token_url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`
	Timeout      string   `toml:"timeout"`
}

// TimeoutDuration parses and returns the token request timeout.
func (c *AuthConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the
// auth configuration.
func (c *AuthConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid"}
	}

	if v := os.Getenv(EnvAuthTokenURL); v != "" {
		c.TokenURL = v
	}
	if v := os.Getenv(EnvAuthClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvAuthClientSecret); v != "" {
		c.ClientSecret = v
	}

	if c.TokenURL == "" {
		return fmt.Errorf("token_url required")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	if overlay.TokenURL != "" {
		c.TokenURL = overlay.TokenURL
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if len(overlay.Scopes) > 0 {
		c.Scopes = overlay.Scopes
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

// DocumentStoreConfig contains document store client configuration.
type DocumentStoreConfig struct {
	Timeout            string      `toml:"timeout"`
	MaxDocumentSize    string      `toml:"max_document_size"`
	MaxParallelFetches int         `toml:"max_parallel_fetches"`
	Retry              RetryConfig `toml:"retry"`

	maxDocumentSizeVal int64
}

// TimeoutDuration parses and returns the per-call timeout.
func (c *DocumentStoreConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// MaxDocumentSizeBytes returns the maximum accepted document size in bytes.
func (c *DocumentStoreConfig) MaxDocumentSizeBytes() int64 {
	return c.maxDocumentSizeVal
}

// Finalize applies defaults and validates the document store configuration.
func (c *DocumentStoreConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "3s"
	}
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "32MB"
	}
	if c.MaxParallelFetches == 0 {
		c.MaxParallelFetches = 8
	}

	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	size, err := units.FromHumanSize(c.MaxDocumentSize)
	if err != nil {
		return fmt.Errorf("invalid max_document_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_document_size must be positive")
	}
	c.maxDocumentSizeVal = size

	if c.MaxParallelFetches < 1 {
		return fmt.Errorf("max_parallel_fetches must be at least 1")
	}

	return c.Retry.Finalize()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *DocumentStoreConfig) Merge(overlay *DocumentStoreConfig) {
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxDocumentSize != "" {
		if size, err := units.FromHumanSize(overlay.MaxDocumentSize); err == nil {
			c.MaxDocumentSize = overlay.MaxDocumentSize
			c.maxDocumentSizeVal = size
		}
	}
	if overlay.MaxParallelFetches != 0 {
		c.MaxParallelFetches = overlay.MaxParallelFetches
	}
	c.Retry.Merge(&overlay.Retry)
}

// ArchiveConfig contains archive system client configuration.
type ArchiveConfig struct {
	BaseURL string      `toml:"base_url"`
	Timeout string      `toml:"timeout"`
	Retry   RetryConfig `toml:"retry"`
}

// TimeoutDuration parses and returns the per-call timeout.
func (c *ArchiveConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the
// archive configuration.
func (c *ArchiveConfig) Finalize() error {
	if c.Timeout == "" {
		c.Timeout = "5s"
	}
	if v := os.Getenv(EnvArchiveBaseURL); v != "" {
		c.BaseURL = v
	}

	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return c.Retry.Finalize()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ArchiveConfig) Merge(overlay *ArchiveConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	c.Retry.Merge(&overlay.Retry)
}

// Package config provides application configuration management with support
// for TOML files, environment variable overrides, and configuration overlays.
package config

import (
	"fmt"
	"os"

	"github.com/helsedok/dokjournal/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration overlays.
	EnvServiceEnv = "SERVICE_ENV"
)

var loggingEnv = &logging.Env{
	Level:  "LOG_LEVEL",
	Format: "LOG_FORMAT",
}

// Config represents the root service configuration.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Logging       logging.Config      `toml:"logging"`
	Auth          AuthConfig          `toml:"auth"`
	DocumentStore DocumentStoreConfig `toml:"document_store"`
	Archive       ArchiveConfig       `toml:"archive"`
	Journaling    JournalingConfig    `toml:"journaling"`
}

// Load reads and parses the base configuration file and applies any
// environment-specific overlay.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile reads and parses the configuration at path and applies any
// environment-specific overlay from the working directory.
func LoadFile(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}
	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the
// configuration.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Auth.Finalize(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.DocumentStore.Finalize(); err != nil {
		return fmt.Errorf("document_store: %w", err)
	}
	if err := c.Archive.Finalize(); err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	if err := c.Journaling.Finalize(); err != nil {
		return fmt.Errorf("journaling: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Auth.Merge(&overlay.Auth)
	c.DocumentStore.Merge(&overlay.DocumentStore)
	c.Archive.Merge(&overlay.Archive)
	c.Journaling.Merge(&overlay.Journaling)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Copyright 2026 The Filebeam Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Filebeam components.
//
// Configuration is loaded from a single file specified by:
//   - FILEBEAM_CONFIG environment variable, or
//   - --config flag passed to the command
//
// There are no fallbacks or automatic discovery. This ensures deterministic,
// auditable configuration with no hidden overrides.
//
// The config file may contain environment-specific sections (development,
// staging, production) that override base values when the environment matches.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for Filebeam.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Gateway configures the HTTP streaming gateway.
	Gateway GatewayConfig `yaml:"gateway"`

	// Stream configures chunked range streaming.
	Stream StreamConfig `yaml:"stream"`

	// Store configures the local object store backing the sessions.
	Store StoreConfig `yaml:"store"`

	// Registry configures the user registry database.
	Registry RegistryConfig `yaml:"registry"`

	// Shortener configures the optional external link shortener.
	Shortener ShortenerConfig `yaml:"shortener"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Gateway  *GatewayConfig  `yaml:"gateway,omitempty"`
	Stream   *StreamConfig   `yaml:"stream,omitempty"`
	Store    *StoreConfig    `yaml:"store,omitempty"`
	Registry *RegistryConfig `yaml:"registry,omitempty"`
}

// GatewayConfig configures the HTTP gateway.
type GatewayConfig struct {
	// ListenAddress is the TCP address the gateway binds.
	// Default: :8080
	ListenAddress string `yaml:"listen_address"`

	// PublicURL is the externally visible base URL used when composing
	// shareable links (scheme and host, no trailing slash).
	// Default: http://localhost:8080
	PublicURL string `yaml:"public_url"`

	// ShutdownTimeout is how long to wait for in-flight requests during
	// graceful shutdown. Duration string, default: 10s.
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// StreamConfig configures chunk fetching.
type StreamConfig struct {
	// ChunkSize is the upstream fetch unit in bytes.
	// Default: 1048576 (1 MiB)
	ChunkSize int64 `yaml:"chunk_size"`

	// FetchTimeout bounds each individual chunk fetch. Duration string,
	// "0" disables the bound. Default: 60s.
	FetchTimeout string `yaml:"fetch_timeout"`
}

// StoreConfig configures the local object store.
type StoreConfig struct {
	// Root is the directory holding stored objects and their indexes.
	Root string `yaml:"root"`

	// Sessions is how many independent store sessions the pool opens.
	// Default: 2
	Sessions int `yaml:"sessions"`

	// Compression selects the at-rest chunk compression.
	// Values: "none", "lz4", "zstd". Default: zstd.
	Compression string `yaml:"compression"`
}

// RegistryConfig configures the user registry database.
type RegistryConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// ShortenerConfig configures the optional external link shortener.
type ShortenerConfig struct {
	// Enabled turns shortening on. When false the long link is used as-is.
	Enabled bool `yaml:"enabled"`

	// Host is the shortener service host (no scheme).
	Host string `yaml:"host"`

	// APIKey authenticates to the shortener service.
	APIKey string `yaml:"api_key"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "share", "filebeam")

	return &Config{
		Environment: Development,
		Gateway: GatewayConfig{
			ListenAddress:   ":8080",
			PublicURL:       "http://localhost:8080",
			ShutdownTimeout: "10s",
		},
		Stream: StreamConfig{
			ChunkSize:    1 << 20,
			FetchTimeout: "60s",
		},
		Store: StoreConfig{
			Root:        filepath.Join(defaultRoot, "store"),
			Sessions:    2,
			Compression: "zstd",
		},
		Registry: RegistryConfig{
			Path: filepath.Join(defaultRoot, "registry.db"),
		},
		Shortener: ShortenerConfig{
			Enabled: false,
		},
	}
}

// Load loads configuration from the FILEBEAM_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if FILEBEAM_CONFIG is not set, this fails.
// This ensures deterministic, auditable configuration with no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("FILEBEAM_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("FILEBEAM_CONFIG environment variable not set; " +
			"set it to the path of your filebeam.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables do not
// override config values - this ensures deterministic, auditable configuration.
// The only expansion performed is ${HOME} and similar path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Gateway != nil {
		if overrides.Gateway.ListenAddress != "" {
			c.Gateway.ListenAddress = overrides.Gateway.ListenAddress
		}
		if overrides.Gateway.PublicURL != "" {
			c.Gateway.PublicURL = overrides.Gateway.PublicURL
		}
		if overrides.Gateway.ShutdownTimeout != "" {
			c.Gateway.ShutdownTimeout = overrides.Gateway.ShutdownTimeout
		}
	}

	if overrides.Stream != nil {
		if overrides.Stream.ChunkSize != 0 {
			c.Stream.ChunkSize = overrides.Stream.ChunkSize
		}
		if overrides.Stream.FetchTimeout != "" {
			c.Stream.FetchTimeout = overrides.Stream.FetchTimeout
		}
	}

	if overrides.Store != nil {
		if overrides.Store.Root != "" {
			c.Store.Root = overrides.Store.Root
		}
		if overrides.Store.Sessions != 0 {
			c.Store.Sessions = overrides.Store.Sessions
		}
		if overrides.Store.Compression != "" {
			c.Store.Compression = overrides.Store.Compression
		}
	}

	if overrides.Registry != nil {
		if overrides.Registry.Path != "" {
			c.Registry.Path = overrides.Registry.Path
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"FILEBEAM_ROOT": c.Store.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Store.Root = expandVars(c.Store.Root, vars)
	vars["FILEBEAM_ROOT"] = c.Store.Root // Update for dependent paths.

	c.Registry.Path = expandVars(c.Registry.Path, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Gateway.ListenAddress == "" {
		errs = append(errs, fmt.Errorf("gateway.listen_address is required"))
	}
	if _, err := time.ParseDuration(c.Gateway.ShutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("gateway.shutdown_timeout: %w", err))
	}

	if c.Stream.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("stream.chunk_size must be positive"))
	}
	if _, err := time.ParseDuration(c.Stream.FetchTimeout); err != nil {
		errs = append(errs, fmt.Errorf("stream.fetch_timeout: %w", err))
	}

	if c.Store.Root == "" {
		errs = append(errs, fmt.Errorf("store.root is required"))
	}
	if c.Store.Sessions < 1 {
		errs = append(errs, fmt.Errorf("store.sessions must be at least 1"))
	}
	compressionValues := []string{"none", "lz4", "zstd"}
	if !contains(compressionValues, c.Store.Compression) {
		errs = append(errs, fmt.Errorf("store.compression must be one of: %v", compressionValues))
	}

	if c.Registry.Path == "" {
		errs = append(errs, fmt.Errorf("registry.path is required"))
	}

	if c.Shortener.Enabled {
		if c.Shortener.Host == "" {
			errs = append(errs, fmt.Errorf("shortener.host is required when shortener is enabled"))
		}
		if c.Shortener.APIKey == "" {
			errs = append(errs, fmt.Errorf("shortener.api_key is required when shortener is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ShutdownTimeout returns the parsed gateway shutdown timeout.
// Validate must have accepted the config first.
func (c *Config) ShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Gateway.ShutdownTimeout)
	return d
}

// FetchTimeout returns the parsed per-chunk fetch timeout.
// Validate must have accepted the config first.
func (c *Config) FetchTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Stream.FetchTimeout)
	return d
}

// EnsurePaths creates all configured directories if they don't exist.
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Store.Root,
		filepath.Dir(c.Registry.Path),
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for riyl.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides. File location: ~/.riyl/config.toml.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete riyl configuration.
type Config struct {
	Version string `toml:"version"`

	// Upstream completion provider (OpenAI-compatible)
	Upstream UpstreamConfig `toml:"upstream"`

	// Gateway server and client settings
	Gateway GatewayConfig `toml:"gateway"`

	// Conversation persistence
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// UpstreamConfig contains the chat completions provider configuration.
type UpstreamConfig struct {
	// APIKey authenticates against the provider. Usually supplied via
	// the RIYL_API_KEY or OPENAI_API_KEY environment variable instead
	// of the config file.
	APIKey string `toml:"api_key"`
	// BaseURL is the provider API base (default: https://api.openai.com/v1)
	BaseURL string `toml:"base_url"`
	// Model is the chat model to request
	Model string `toml:"model"`
	// TimeoutSecs bounds a single upstream request
	TimeoutSecs int `toml:"timeout_secs"`
}

// GatewayConfig contains gateway server and client configuration.
type GatewayConfig struct {
	// Port the local gateway listens on
	Port int `toml:"port"`
	// URL is the gateway base URL the TUI talks to
	URL string `toml:"url"`
	// TimeoutSecs bounds a single gateway request from the TUI
	TimeoutSecs int `toml:"timeout_secs"`
}

// StorageConfig contains conversation persistence configuration.
type StorageConfig struct {
	// Backend selects the store: "file" or "sqlite"
	Backend string `toml:"backend"`
	// Path overrides the data location (empty = ~/.riyl/data or
	// ~/.riyl/riyl.db depending on backend)
	Path string `toml:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the color theme: "dark" or "light"
	Theme string `toml:"theme"`
	// ShowTimestamps displays message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: "1.0",
		Upstream: UpstreamConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			TimeoutSecs: 60,
		},
		Gateway: GatewayConfig{
			Port:        8422,
			URL:         "http://127.0.0.1:8422",
			TimeoutSecs: 60,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the riyl configuration directory (~/.riyl).
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".riyl"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file may hold an API key, so it should be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.riyl/config.toml, falling back to
// defaults when the file does not exist. Environment overrides are
// applied last.
func Load() (*Config, error) {
	cfg := &Config{}

	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			if err := loadTOML(cfg, path); err != nil {
				return nil, fmt.Errorf("failed to load config: %w", err)
			}
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	if err := loadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadTOML decodes a TOML file over cfg.
func loadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = defaults.Upstream.BaseURL
	}
	if c.Upstream.Model == "" {
		c.Upstream.Model = defaults.Upstream.Model
	}
	if c.Upstream.TimeoutSecs <= 0 {
		c.Upstream.TimeoutSecs = defaults.Upstream.TimeoutSecs
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = defaults.Gateway.Port
	}
	if c.Gateway.URL == "" {
		c.Gateway.URL = fmt.Sprintf("http://127.0.0.1:%d", c.Gateway.Port)
	}
	if c.Gateway.TimeoutSecs <= 0 {
		c.Gateway.TimeoutSecs = defaults.Gateway.TimeoutSecs
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = defaults.Storage.Backend
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to ~/.riyl/config.toml with restrictive
// permissions (the file may hold an API key).
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a TOML file at path.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# riyl configuration file")
	fmt.Fprintln(file, "# Generated by riyl - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return ValidationError{Field: "gateway.port", Message: fmt.Sprintf("port %d out of range 1-65535", c.Gateway.Port)}
	}

	if _, err := url.Parse(c.Gateway.URL); err != nil {
		return ValidationError{Field: "gateway.url", Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if _, err := url.Parse(c.Upstream.BaseURL); err != nil {
		return ValidationError{Field: "upstream.base_url", Message: fmt.Sprintf("invalid URL: %v", err)}
	}

	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return ValidationError{Field: "storage.backend", Message: fmt.Sprintf("unknown backend %q (valid: file, sqlite)", c.Storage.Backend)}
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return ValidationError{Field: "ui.theme", Message: fmt.Sprintf("unknown theme %q (valid: dark, light)", c.UI.Theme)}
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	// RIYL_API_KEY wins over OPENAI_API_KEY
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Upstream.APIKey = key
	}
	if key := os.Getenv("RIYL_API_KEY"); key != "" {
		c.Upstream.APIKey = key
	}

	if base := os.Getenv("RIYL_UPSTREAM_URL"); base != "" {
		c.Upstream.BaseURL = base
	}

	if model := os.Getenv("RIYL_MODEL"); model != "" {
		c.Upstream.Model = model
	}

	if gw := os.Getenv("RIYL_GATEWAY_URL"); gw != "" {
		c.Gateway.URL = gw
	}

	if port := os.Getenv("RIYL_GATEWAY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Gateway.Port = p
		}
	}

	if backend := os.Getenv("RIYL_STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = strings.ToLower(backend)
	}
}

// =============================================================================
// GLOBAL CONFIG
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Global returns the global configuration, loading it on first use.
// Returns defaults if loading fails.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global configuration so tests can
// force a reload.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}

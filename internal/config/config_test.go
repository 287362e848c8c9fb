// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Gateway.Port != 8422 {
		t.Errorf("gateway port = %d, want 8422", cfg.Gateway.Port)
	}
	if cfg.Upstream.Model != "gpt-3.5-turbo" {
		t.Errorf("model = %q, want gpt-3.5-turbo", cfg.Upstream.Model)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
version = "1.0"

[upstream]
model = "gpt-4o-mini"
timeout_secs = 30

[gateway]
port = 9000

[storage]
backend = "sqlite"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Upstream.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", cfg.Upstream.Model)
	}
	if cfg.Gateway.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Gateway.Port)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}

	// Unset fields fall back to defaults.
	if cfg.Upstream.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("base_url = %q, want default", cfg.Upstream.BaseURL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.UI.Theme)
	}
}

func TestLoadFromPathGatewayURLFollowsPort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[gateway]
port = 9000
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Gateway.URL != "http://127.0.0.1:9000" {
		t.Errorf("gateway url = %q, want derived from port", cfg.Gateway.URL)
	}
}

func TestLoadFromPathInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port too low", func(c *Config) { c.Gateway.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Gateway.Port = 70000 }, true},
		{"bad backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"sqlite backend", func(c *Config) { c.Storage.Backend = BackendSQLite }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("RIYL_API_KEY", "sk-riyl")
	t.Setenv("RIYL_MODEL", "gpt-4o")
	t.Setenv("RIYL_GATEWAY_URL", "http://127.0.0.1:9999")
	t.Setenv("RIYL_STORAGE_BACKEND", "SQLITE")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Upstream.APIKey != "sk-riyl" {
		t.Errorf("api key = %q, RIYL_API_KEY should win over OPENAI_API_KEY", cfg.Upstream.APIKey)
	}
	if cfg.Upstream.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", cfg.Upstream.Model)
	}
	if cfg.Gateway.URL != "http://127.0.0.1:9999" {
		t.Errorf("gateway url = %q, want env override", cfg.Gateway.URL)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite (lowered)", cfg.Storage.Backend)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Upstream.Model = "gpt-4o-mini"
	cfg.Gateway.Port = 9100
	cfg.Gateway.URL = "http://127.0.0.1:9100"

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file permissions = %o, want 0600", perm)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Upstream.Model != "gpt-4o-mini" {
		t.Errorf("model = %q after round trip", loaded.Upstream.Model)
	}
	if loaded.Gateway.Port != 9100 {
		t.Errorf("port = %d after round trip", loaded.Gateway.Port)
	}
}

func TestGlobalSetAndReset(t *testing.T) {
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	custom := Default()
	custom.Upstream.Model = "custom-model"
	SetGlobal(custom)

	if got := Global().Upstream.Model; got != "custom-model" {
		t.Errorf("Global model = %q, want custom-model", got)
	}
}

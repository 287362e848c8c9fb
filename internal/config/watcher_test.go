// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherInvokesOnReload(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	updated := "version = \"1.0\"\n\n[upstream]\nmodel = \"gpt-4o-mini\"\n"
	if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Upstream.Model != "gpt-4o-mini" {
			t.Errorf("reloaded model = %q, want gpt-4o-mini", cfg.Upstream.Model)
		}
		if Global().Upstream.Model != "gpt-4o-mini" {
			t.Error("reload did not update the global config")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onReload was not invoked after the config file changed")
	}
}

func TestWatcherKeepsConfigOnBadReload(t *testing.T) {
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0\"\n"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	called := make(chan struct{}, 1)
	w, err := NewWatcher(path, func(*Config) {
		select {
		case called <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("not = [valid toml"), 0600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case <-called:
		t.Fatal("onReload fired for a config that failed to load")
	case <-time.After(1 * time.Second):
	}
}

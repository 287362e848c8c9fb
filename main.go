// riyl - a terminal client for RIYL ("recommended if you like") music
// recommendations.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/riyl-tui/internal/config"
	"github.com/jeranaias/riyl-tui/internal/gateway"
	"github.com/jeranaias/riyl-tui/internal/openai"
	"github.com/jeranaias/riyl-tui/internal/server"
	"github.com/jeranaias/riyl-tui/internal/session"
	"github.com/jeranaias/riyl-tui/internal/storage"
	"github.com/jeranaias/riyl-tui/internal/ui/chat"
	"github.com/jeranaias/riyl-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "", "tui":
		runTUI()
	case "serve":
		runServe()
	case "version", "--version", "-v":
		fmt.Printf("riyl %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`riyl - music recommendation chat

Usage:
  riyl             Start the chat TUI
  riyl serve       Start the local completion gateway
  riyl version     Print version information

The TUI talks to the gateway (riyl serve) which forwards prompts to an
OpenAI-compatible API. Set RIYL_API_KEY or OPENAI_API_KEY before
starting the gateway.`)
}

// =============================================================================
// TUI
// =============================================================================

// runTUI starts the chat interface.
func runTUI() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "riyl requires an interactive terminal (run 'riyl serve' for the gateway)")
		os.Exit(1)
	}

	cfg := config.Global()

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening conversation store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	client := gateway.NewClientWithConfig(&gateway.ClientConfig{
		BaseURL: cfg.Gateway.URL,
		Timeout: time.Duration(cfg.Gateway.TimeoutSecs) * time.Second,
	})

	mgr := session.NewManager(session.Config{
		Store:     store,
		Completer: client,
	})
	mgr.Restore()

	theme := styles.NewTheme()
	m := chat.New(mgr, theme)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running riyl: %v\n", err)
		os.Exit(1)
	}
}

// openStore opens the conversation store selected by the config.
func openStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path := cfg.Storage.Path
		if path == "" {
			dir, err := config.ConfigDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(dir, "riyl.db")
		}
		return storage.NewSQLiteStore(path)
	default:
		if cfg.Storage.Path != "" {
			return storage.NewFileStoreWithDir(cfg.Storage.Path)
		}
		return storage.NewFileStore()
	}
}

// =============================================================================
// GATEWAY SERVER
// =============================================================================

// newUpstream builds the OpenAI client from the upstream section of the
// config.
func newUpstream(cfg *config.Config) *openai.Client {
	return openai.NewClient(cfg.Upstream.APIKey).
		WithBaseURL(cfg.Upstream.BaseURL).
		WithModel(cfg.Upstream.Model).
		WithTimeout(time.Duration(cfg.Upstream.TimeoutSecs) * time.Second)
}

// runServe starts the local completion gateway and blocks until
// interrupted.
func runServe() {
	cfg := config.Global()

	if cfg.Upstream.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: no API key configured (set RIYL_API_KEY); chat requests will fail")
	}

	srv := server.NewServer(server.Config{
		Port:            cfg.Gateway.Port,
		Upstream:        newUpstream(cfg),
		UpstreamTimeout: time.Duration(cfg.Upstream.TimeoutSecs) * time.Second,
	})

	// Hot-reload the config so key or model changes apply without a
	// restart. The upstream client is rebuilt and swapped in; reload
	// failures keep the previous config.
	if path, err := config.ConfigPath(); err == nil {
		onReload := func(reloaded *config.Config) {
			srv.SetUpstream(newUpstream(reloaded))
			log.Printf("UPSTREAM_RELOADED | model=%s", reloaded.Upstream.Model)
		}
		if watcher, err := config.NewWatcher(path, onReload); err == nil {
			if err := watcher.Watch(); err == nil {
				defer watcher.Close()
			}
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Gateway error: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			os.Exit(1)
		}
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides the HTTP completion gateway.
//
// Endpoints:
//   - POST /api/chat - prompt in, recommendation text out
//   - GET  /health   - health check
//
// The gateway wraps the prompt in the RIYL recommendation template, forwards
// it to an OpenAI-compatible upstream, and maps upstream failures to the
// fixed status codes the client contract promises: 400 for a missing prompt,
// 429 for quota exhaustion, 500 for everything else.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/riyl-tui/internal/openai"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultPort is the default port for the gateway.
	DefaultPort = 8422

	// MaxRequestBodySize caps the request body to prevent DoS (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxPromptLength is the maximum prompt length accepted.
	MaxPromptLength = 4000

	// Version is the gateway version.
	Version = "0.1.0"
)

// Prompt construction for the upstream model.
const (
	// systemPrompt is sent ahead of every completion request.
	systemPrompt = "You are a helpful chatbot."

	// riylPromptFormat wraps the user prompt in the recommendation request.
	// RIYL = "recommended if you like".
	riylPromptFormat = "Give me 9 related music recommendations RIYL %s"
)

// Error message strings the contract fixes. Clients show some of these
// verbatim, so they must not change.
const (
	msgNoPrompt      = "No prompt provided"
	msgQuotaExceeded = "You have exceeded your API usage quota. Please check your plan or try again later."
	msgInternalError = "Internal server error"
)

// ============================================================================
// WIRE TYPES
// ============================================================================

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Prompt string `json:"prompt"`
}

// ChatResponse is the success body of POST /api/chat.
type ChatResponse struct {
	Response string `json:"response"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Requests      int64  `json:"requests"`
}

// ============================================================================
// SERVER
// ============================================================================

// Chatter is the upstream completion dependency. *openai.Client implements
// it; tests substitute fakes.
type Chatter interface {
	Chat(ctx context.Context, messages []openai.ChatMessage) (*openai.ChatResponse, error)
}

// Server is the completion gateway HTTP server.
type Server struct {
	port    int
	timeout time.Duration

	// upstream is swappable at runtime so config reloads can rebuild the
	// client without restarting the listener.
	upstreamMu sync.RWMutex
	upstream   Chatter

	router *http.ServeMux
	server *http.Server

	startTime time.Time
	requests  atomic.Int64
}

// Config holds gateway configuration.
type Config struct {
	// Port to listen on (default: DefaultPort). The gateway binds to
	// localhost only.
	Port int

	// Upstream performs the completion requests.
	Upstream Chatter

	// UpstreamTimeout bounds a single upstream call (default: 60s).
	UpstreamTimeout time.Duration
}

// NewServer creates a gateway server, filling in defaults for any zero
// config fields.
func NewServer(cfg Config) *Server {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.UpstreamTimeout == 0 {
		cfg.UpstreamTimeout = 60 * time.Second
	}

	s := &Server{
		port:      cfg.Port,
		upstream:  cfg.Upstream,
		timeout:   cfg.UpstreamTimeout,
		router:    http.NewServeMux(),
		startTime: time.Now(),
	}
	s.routes()
	return s
}

// routes registers all endpoints.
func (s *Server) routes() {
	s.router.HandleFunc("POST /api/chat", s.handleChat)
	s.router.HandleFunc("GET /health", s.handleHealth)
}

// SetUpstream replaces the upstream completion client. In-flight requests
// keep the client they started with.
func (s *Server) SetUpstream(u Chatter) {
	s.upstreamMu.Lock()
	defer s.upstreamMu.Unlock()
	s.upstream = u
}

func (s *Server) getUpstream() Chatter {
	s.upstreamMu.RLock()
	defer s.upstreamMu.RUnlock()
	return s.upstream
}

// Handler returns the server's handler with middleware applied, for tests
// and embedding.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(log.Default()),
		RateLimitMiddleware(NewRateLimiter(DefaultRatePerSecond, DefaultBurst)),
	)(s.router)
}

// ============================================================================
// HANDLERS
// ============================================================================

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, msgNoPrompt)
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		s.writeError(w, http.StatusBadRequest, msgNoPrompt)
		return
	}
	if len([]rune(prompt)) > MaxPromptLength {
		s.writeError(w, http.StatusBadRequest, "Prompt too long")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	messages := []openai.ChatMessage{
		openai.NewSystemMessage(systemPrompt),
		openai.NewUserMessage(fmt.Sprintf(riylPromptFormat, prompt)),
	}

	resp, err := s.getUpstream().Chat(ctx, messages)
	if err != nil {
		if openai.IsRateLimited(err) {
			log.Printf("CHAT_QUOTA_EXCEEDED | client_ip=%s", GetClientIP(r))
			s.writeError(w, http.StatusTooManyRequests, msgQuotaExceeded)
			return
		}
		if errors.Is(err, openai.ErrNotConfigured) {
			log.Printf("CHAT_NOT_CONFIGURED | upstream API key missing")
		} else {
			log.Printf("CHAT_UPSTREAM_ERROR | err=%v", err)
		}
		s.writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	content := resp.GetContent()
	if content == "" {
		log.Printf("CHAT_EMPTY_COMPLETION | upstream returned no content")
		s.writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	s.writeJSON(w, http.StatusOK, ChatResponse{Response: content})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Requests:      s.requests.Load(),
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start starts the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("SERVER_START | addr=%s version=%s", addr, Version)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes the flat {"error": "..."} body the client contract
// expects.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

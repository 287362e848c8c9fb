// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation list and the single in-flight
// completion request.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jeranaias/riyl-tui/internal/gateway"
	"github.com/jeranaias/riyl-tui/internal/model"
	"github.com/jeranaias/riyl-tui/internal/storage"
	"github.com/jeranaias/riyl-tui/internal/util"
)

// User-facing messages written into the placeholder when a request fails.
const (
	// GenericErrorMessage replaces the placeholder on any failure that is
	// not quota exhaustion.
	GenericErrorMessage = "Something went wrong. Please try again."

	// QuotaErrorMessage replaces the placeholder when the gateway reports
	// quota exhaustion.
	QuotaErrorMessage = "You have exceeded your API usage quota. Please check your plan or try again later."
)

// Completer performs a completion request for a prompt. The gateway client
// implements it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the conversation list (most recent first), the active
// selection, and the single pending request. All methods are safe for
// concurrent use.
type Manager struct {
	mu sync.Mutex

	// Conversation state
	conversations []*model.Conversation
	activeID      string

	// The one request allowed in flight, nil when idle. It remembers the
	// originating conversation so the response lands there even if the user
	// switches away before it arrives.
	pending *pendingRequest

	// Injected dependencies
	store     storage.BlobStore
	completer Completer
	now       func() time.Time
	newID     func() string
}

// pendingRequest tracks the request currently in flight.
type pendingRequest struct {
	ConversationID string
	StartedAt      time.Time
}

// Config holds configuration for the session manager.
type Config struct {
	// Store persists the conversation list. Optional; nil disables
	// persistence.
	Store storage.BlobStore

	// Completer performs completion requests.
	Completer Completer

	// Now overrides the clock, for tests. Default: time.Now.
	Now func() time.Time

	// NewID overrides ID generation, for tests. Default: model.NewID.
	NewID func() string
}

// NewManager creates a session manager, filling in defaults for any zero
// config fields.
func NewManager(cfg Config) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = model.NewID
	}
	return &Manager{
		conversations: make([]*model.Conversation, 0),
		store:         cfg.Store,
		completer:     cfg.Completer,
		now:           cfg.Now,
		newID:         cfg.NewID,
	}
}

// =============================================================================
// RESTORE
// =============================================================================

// Restore loads persisted conversations. Missing or corrupt history never
// fails startup: the manager simply starts empty. When anything was
// restored, the most recent conversation becomes active.
func (m *Manager) Restore() {
	if m.store == nil {
		return
	}

	convs, err := storage.LoadConversations(m.store)
	if err != nil {
		log.Printf("session: discarding unreadable history: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.conversations = convs
	if len(convs) > 0 {
		m.activeID = convs[0].ID
	}
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// Conversations returns the conversation list, most recent first.
func (m *Manager) Conversations() []*model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Conversation, len(m.conversations))
	copy(out, m.conversations)
	return out
}

// Active returns the active conversation, or nil when composing a new chat.
func (m *Manager) Active() *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(m.activeID)
}

// ActiveID returns the active conversation ID, or "" when none is selected.
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// NewConversation clears the active selection. The conversation itself is
// only created once the first prompt is sent.
func (m *Manager) NewConversation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeID = ""
}

// Select makes the conversation with the given ID active.
func (m *Manager) Select(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(id) == nil {
		return ErrConversationNotFound
	}
	m.activeID = id
	return nil
}

// Delete removes a conversation. Deleting the active conversation clears the
// selection, dropping the user back into a fresh composer. A pending request
// originating here stays in flight; its response is dropped on arrival.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, c := range m.conversations {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrConversationNotFound
	}

	m.conversations = append(m.conversations[:idx], m.conversations[idx+1:]...)

	if m.activeID == id {
		m.activeID = ""
	}

	m.persistLocked()
	return nil
}

// Search returns conversations whose title or original query contains the
// query, case-insensitively. An empty query returns the full list.
func (m *Manager) Search(query string) []*model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	if query == "" {
		out := make([]*model.Conversation, len(m.conversations))
		copy(out, m.conversations)
		return out
	}

	var results []*model.Conversation
	for _, c := range m.conversations {
		if util.ContainsFold(c.Title, query) || util.ContainsFold(c.Query, query) {
			results = append(results, c)
		}
	}
	return results
}

// =============================================================================
// SEND / RESOLVE
// =============================================================================

// Send admits a prompt: it appends the user message plus an empty assistant
// placeholder to the active conversation (creating one if nothing is
// selected), persists optimistically, and records the pending request.
// It returns the originating conversation ID.
//
// Send rejects empty prompts and rejects everything while a request is
// already in flight.
func (m *Manager) Send(prompt string) (string, error) {
	if !hasContent(prompt) {
		return "", ErrEmptyPrompt
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil {
		return "", ErrBusy
	}

	// Existing conversations keep their position in the list; only brand new
	// ones are prepended.
	conv := m.findLocked(m.activeID)
	if conv == nil {
		conv = model.NewConversation()
		conv.ID = m.newID()
		conv.CreatedAt = m.now()
		conv.UpdatedAt = conv.CreatedAt
		m.conversations = append([]*model.Conversation{conv}, m.conversations...)
		m.activeID = conv.ID
	}

	conv.AddUserMessage(prompt)
	conv.AddAssistantMessage()
	conv.UpdatedAt = m.now()

	m.pending = &pendingRequest{
		ConversationID: conv.ID,
		StartedAt:      m.now(),
	}

	m.persistLocked()
	return conv.ID, nil
}

// Complete performs the gateway call for an admitted request and resolves
// the placeholder with the outcome. It blocks and is meant to run off the
// UI goroutine.
func (m *Manager) Complete(ctx context.Context, conversationID, prompt string) {
	if m.completer == nil {
		m.Resolve(conversationID, "", ErrNoCompleter)
		return
	}
	text, err := m.completer.Complete(ctx, prompt)
	m.Resolve(conversationID, text, err)
}

// Resolve lands a response (or failure) in the conversation that originated
// the request, regardless of what is selected now. If that conversation was
// deleted while the request was in flight, the result is dropped.
func (m *Manager) Resolve(conversationID, text string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending != nil && m.pending.ConversationID == conversationID {
		m.pending = nil
	}

	conv := m.findLocked(conversationID)
	if conv == nil {
		return
	}

	content := text
	if err != nil {
		content = userFacingError(err)
	} else if content == "" {
		// An empty success must not leave the placeholder hanging.
		content = GenericErrorMessage
	}

	ph := conv.PendingPlaceholder()
	if ph == nil {
		msg := model.NewAssistantMessage()
		msg.Content = content
		conv.Messages = append(conv.Messages, msg)
	} else {
		ph.Content = content
	}
	conv.UpdatedAt = m.now()

	m.persistLocked()
}

// IsPending reports whether a request is in flight.
func (m *Manager) IsPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// PendingConversationID returns the originating conversation of the in-flight
// request, or "" when idle.
func (m *Manager) PendingConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == nil {
		return ""
	}
	return m.pending.ConversationID
}

// =============================================================================
// HELPERS
// =============================================================================

// userFacingError maps a completion failure onto the message shown in place
// of the bot reply.
func userFacingError(err error) string {
	if errors.Is(err, gateway.ErrQuotaExceeded) {
		return QuotaErrorMessage
	}
	return GenericErrorMessage
}

// hasContent reports whether the prompt contains anything but whitespace.
func hasContent(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// findLocked returns the conversation with the given ID. Caller holds mu.
func (m *Manager) findLocked(id string) *model.Conversation {
	if id == "" {
		return nil
	}
	for _, c := range m.conversations {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// persistLocked writes the conversation list through the store. Persistence
// failures are logged and never roll back in-memory state. Caller holds mu.
func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	if err := storage.SaveConversations(m.store, m.conversations); err != nil {
		log.Printf("session: persist failed: %v", err)
	}
}

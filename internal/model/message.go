// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Bot"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message. It acts as the
// placeholder appended when a request is dispatched, and its content is
// replaced wholesale when the response (or an error message) arrives.
func NewAssistantMessage() *Message {
	return NewMessage(RoleAssistant, "")
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsPlaceholder reports whether this is an assistant message still awaiting
// its response text.
func (m *Message) IsPlaceholder() bool {
	return m.Role == RoleAssistant && m.Content == ""
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// ID GENERATION
// =============================================================================

// NewID returns a unique identifier. UUIDs are preferred; if the random
// source is unavailable the timestamp-based fallback keeps IDs unique enough
// for local use.
func NewID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return TimestampID()
	}
	return id.String()
}

// TimestampID builds an identifier from the current time plus a random
// suffix. Used as the fallback when UUID generation fails.
func TimestampID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return strconv.FormatInt(time.Now().UnixNano(), 36) + "-" + hex.EncodeToString(bytes)
}

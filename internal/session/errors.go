// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation list and the single in-flight
// completion request.
package session

// Sentinel errors returned by Manager operations.
// Use errors.Is to check for them.
var (
	// ErrBusy is returned by Send while a request is already in flight.
	ErrBusy = &SessionError{Message: "a request is already in flight"}

	// ErrEmptyPrompt is returned by Send for whitespace-only prompts.
	ErrEmptyPrompt = &SessionError{Message: "prompt is empty"}

	// ErrConversationNotFound is returned when an ID matches nothing.
	ErrConversationNotFound = &SessionError{Message: "conversation not found"}

	// ErrNoCompleter is returned when no completion backend is configured.
	ErrNoCompleter = &SessionError{Message: "no completion backend configured"}
)

// SessionError represents a session-related error.
// It implements the error interface and can be compared using errors.Is.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

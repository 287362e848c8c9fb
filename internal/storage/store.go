// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for riyl-tui.
package storage

// ConversationsKey is the versioned key the conversation list is stored
// under. Bump the version suffix when the serialized shape changes.
const ConversationsKey = "riyl.conversations.v1"

// =============================================================================
// BLOB STORE INTERFACE
// =============================================================================

// BlobStore is a minimal key/value store for opaque byte blobs. The file and
// SQLite backends both implement it; the session manager only ever reads and
// writes whole blobs.
type BlobStore interface {
	// Get returns the blob stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Put stores the blob under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes the blob under key. Deleting a missing key is not an
	// error.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrKeyNotFound is returned when a blob doesn't exist.
// Use errors.Is(err, ErrKeyNotFound) to check for this error.
var ErrKeyNotFound = &StoreError{Message: "key not found"}

// StoreError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

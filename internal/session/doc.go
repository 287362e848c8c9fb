// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages the conversation list and the single in-flight
// completion request.
//
// Manager is the core of the application: it keeps conversations most
// recent first, tracks the active selection, and enforces that exactly one
// completion request runs at a time.
//
// # Send / Resolve cycle
//
// Send appends the user message and an empty assistant placeholder to the
// active conversation (creating one when nothing is selected), persists
// optimistically, and records which conversation originated the request.
// Resolve later replaces that placeholder wholesale with the response text
// or a fixed user-facing error message. The response always lands in the
// originating conversation, even when the user has switched away; if the
// conversation was deleted in the meantime the response is dropped.
//
// # Persistence
//
// The full conversation list is written through a storage.BlobStore after
// every mutation. Restore is fail-soft: unreadable history is logged and
// discarded, never fatal.
package session

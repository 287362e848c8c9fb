// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for riyl-tui.
//
// Conversations are serialized as a single JSON array stored under the
// versioned key ConversationsKey in a BlobStore. Two backends are provided:
//
//   - FileStore: one file per key under ~/.riyl/data/, written atomically
//   - SQLiteStore: a single-table key/value database
//
// # Usage
//
// Save and load the full conversation list:
//
//	store, err := storage.NewFileStore()
//	err = storage.SaveConversations(store, convs)
//	convs, err := storage.LoadConversations(store)
//
// Loading is fail-soft by key: a missing blob yields an empty list. A
// corrupt blob yields an error the caller is expected to log and then
// proceed with an empty history.
package storage

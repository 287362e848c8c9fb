// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations and their messages.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, and timestamp
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Create a new conversation:
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("Hello!")
//	conv.AddAssistantMessage() // empty placeholder until the reply lands
//
// Conversations derive their title from the first user prompt and keep the
// verbatim prompt in Query for search. IDs are UUIDs with a timestamp-based
// fallback.
package model

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the riyl TUI.
//
// The view is a Bubble Tea model with three regions: a sidebar listing
// conversations (most recent first, searchable), a transcript viewport
// for the active conversation, and a prompt composer. Submitting a
// prompt goes through the session manager, which appends the user
// message and a placeholder bot message immediately; the gateway call
// runs in a background command and replaces the placeholder when it
// resolves, even if the user has switched conversations meanwhile.
package chat

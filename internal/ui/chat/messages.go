// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// CompletionDoneMsg is sent when a background completion request has
// resolved. The reply (or its error text) has already been written into
// the originating conversation by the session manager; the view only
// needs to refresh.
type CompletionDoneMsg struct {
	ConversationID string
}

// StatusMsg sets a transient message in the status bar.
type StatusMsg struct {
	Text    string
	IsError bool
}

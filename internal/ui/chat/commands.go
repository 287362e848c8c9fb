// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/riyl-tui/internal/session"
)

// CompleteCmd creates a command that runs the gateway completion for an
// already-admitted prompt. The session manager resolves the reply into
// the originating conversation regardless of which conversation is
// active when it lands.
func CompleteCmd(mgr *session.Manager, conversationID, prompt string) tea.Cmd {
	return func() tea.Msg {
		mgr.Complete(context.Background(), conversationID, prompt)
		return CompletionDoneMsg{ConversationID: conversationID}
	}
}

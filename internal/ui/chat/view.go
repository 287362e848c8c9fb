// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/riyl-tui/internal/model"
	"github.com/jeranaias/riyl-tui/internal/util"
)

const (
	sidebarWidthWide   = 32
	sidebarWidthNarrow = 24
)

// sidebarWidth returns the sidebar width for the current terminal size.
func (m *Model) sidebarWidth() int {
	if m.width >= 100 {
		return sidebarWidthWide
	}
	return sidebarWidthNarrow
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

// =============================================================================
// HEADER
// =============================================================================

func (m *Model) renderHeader() string {
	title := model.DefaultTitle
	if active := m.mgr.Active(); active != nil {
		title = active.GetTitle()
	}

	brand := m.theme.HeaderBrand.Render("riyl")
	sep := m.theme.ShortcutDesc.Render(" | ")
	return m.theme.Header.Width(m.viewport.Width).Render(
		brand + sep + m.theme.HeaderTitle.Render(util.TruncateWidth(title, m.viewport.Width-12)),
	)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) renderSidebar() string {
	width := m.sidebarWidth()
	innerWidth := width - 4

	var b strings.Builder

	if m.searching {
		b.WriteString(m.theme.SearchPrompt.Render(m.searchInput.View()))
	} else {
		b.WriteString(m.theme.SidebarMeta.Render("Chats"))
	}
	b.WriteString("\n\n")

	if len(m.list) == 0 {
		if m.searching && m.searchInput.Value() != "" {
			b.WriteString(m.theme.SidebarMeta.Render("No matches"))
		} else {
			b.WriteString(m.theme.SidebarMeta.Render("No chats yet"))
		}
	}

	activeID := m.mgr.ActiveID()
	for i, conv := range m.list {
		label := util.TruncateWidth(conv.GetTitle(), innerWidth)

		var line string
		switch {
		case m.focus != FocusInput && i == m.cursor:
			line = m.theme.SidebarItemSelected.Width(innerWidth + 2).Render(label)
		case conv.ID == activeID:
			line = m.theme.SidebarItemActive.Render(label)
		default:
			line = m.theme.SidebarItem.Render(label)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	style := m.theme.Sidebar
	if m.focus == FocusSidebar || m.focus == FocusSearch {
		style = m.theme.SidebarFocused
	}
	return style.Width(width).Height(m.height - 2).Render(b.String())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderConversation renders the full transcript of a conversation.
func (m *Model) renderConversation(conv *model.Conversation) string {
	if conv.IsEmpty() {
		return m.emptyTranscript()
	}

	var b strings.Builder
	for _, msg := range conv.Messages {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders a single message bubble.
func (m *Model) renderMessage(msg *model.Message) string {
	label := m.theme.SenderLabel.Render(msg.Role.DisplayName())
	ts := m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	header := label + " " + ts

	if msg.IsPlaceholder() {
		body := m.spinner.View() + " " + m.theme.ThinkingText.Render("Thinking...")
		return header + "\n" + m.theme.BotBubble.Render(body) + "\n"
	}

	content := msg.Content
	if msg.Role == model.RoleAssistant && m.renderer != nil {
		if rendered, err := m.renderer.Render(content); err == nil {
			content = strings.TrimRight(rendered, "\n")
		}
	}

	bubble := m.theme.UserBubble
	if msg.Role == model.RoleAssistant {
		bubble = m.theme.BotBubble
	}
	return header + "\n" + bubble.Render(content) + "\n"
}

// emptyTranscript renders the welcome text shown before any messages.
func (m *Model) emptyTranscript() string {
	lines := []string{
		"",
		m.theme.HeaderTitle.Render("  riyl - recommended if you like"),
		"",
		m.theme.ThinkingText.Render("  Name an artist, album, or song you like and"),
		m.theme.ThinkingText.Render("  get nine related music recommendations."),
		"",
		m.theme.ShortcutDesc.Render("  Enter to send, Tab for the chat list, C-n for a new chat."),
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// INPUT AND STATUS BAR
// =============================================================================

func (m *Model) renderInput() string {
	return m.theme.InputContainer.Width(m.viewport.Width).Render(m.input.View())
}

func (m *Model) renderStatusBar() string {
	if m.status != "" {
		style := m.theme.StatusBar
		text := m.status
		if m.statusError {
			text = m.theme.StatusError.Render(text)
		}
		return style.Width(m.width).Render(text)
	}

	if m.mgr.IsPending() {
		return m.theme.StatusBar.Width(m.width).Render(
			m.spinner.View() + " " + m.theme.ThinkingText.Render("Fetching recommendations..."),
		)
	}

	shortcuts := []string{
		m.theme.ShortcutKey.Render("Enter") + m.theme.ShortcutDesc.Render(" send"),
		m.theme.ShortcutKey.Render("Tab") + m.theme.ShortcutDesc.Render(" chats"),
		m.theme.ShortcutKey.Render("C-n") + m.theme.ShortcutDesc.Render(" new"),
		m.theme.ShortcutKey.Render("C-f") + m.theme.ShortcutDesc.Render(" search"),
		m.theme.ShortcutKey.Render("C-d") + m.theme.ShortcutDesc.Render(" delete"),
		m.theme.ShortcutKey.Render("C-c") + m.theme.ShortcutDesc.Render(" quit"),
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(shortcuts, "  "))
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/riyl-tui/internal/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case CompletionDoneMsg:
		m.refreshList()
		if msg.ConversationID == m.mgr.ActiveID() {
			m.refreshTranscript()
		}
		if !m.mgr.IsPending() {
			m.setStatus("", false)
		}
		return m, nil

	case StatusMsg:
		m.setStatus(msg.Text, msg.IsError)
		return m, nil

	case spinner.TickMsg:
		if !m.mgr.IsPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.mgr.PendingConversationID() == m.mgr.ActiveID() {
			m.refreshTranscript()
		}
		return m, cmd
	}

	return m.updateComponents(msg)
}

// resize recomputes the layout for a new terminal size.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.ready = true
	m.theme.SetSize(width, height)

	transcriptWidth := width - m.sidebarWidth() - 4
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	// Header, input and status bar take four rows.
	transcriptHeight := height - 4
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	m.viewport.Width = transcriptWidth
	m.viewport.Height = transcriptHeight
	m.input.Width = transcriptWidth - 4

	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(transcriptWidth-4),
	); err == nil {
		m.renderer = r
	}

	m.refreshTranscript()
}

// handleKey routes key presses based on focus.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global bindings
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.NewChat):
		m.mgr.NewConversation()
		m.closeSearch()
		m.refreshList()
		m.refreshTranscript()
		m.focus = FocusInput
		m.input.Focus()
		m.setStatus("", false)
		return m, nil

	case key.Matches(msg, m.keyMap.Focus):
		if m.focus == FocusInput {
			m.focus = FocusSidebar
			m.input.Blur()
		} else {
			m.focus = FocusInput
			m.searchInput.Blur()
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Search):
		m.focus = FocusSearch
		m.searching = true
		m.input.Blur()
		m.searchInput.Focus()
		m.refreshList()
		return m, nil
	}

	switch m.focus {
	case FocusSidebar:
		return m.handleSidebarKey(msg)
	case FocusSearch:
		return m.handleSearchKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

// handleInputKey handles keys while the composer is focused.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSidebarKey handles keys while the conversation list is focused.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		if conv := m.selected(); conv != nil {
			if err := m.mgr.Select(conv.ID); err == nil {
				m.refreshTranscript()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Delete):
		if conv := m.selected(); conv != nil {
			if err := m.mgr.Delete(conv.ID); err == nil {
				m.refreshList()
				m.refreshTranscript()
			}
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Cancel):
		m.closeSearch()
		m.refreshList()
		return m, nil
	}

	return m, nil
}

// handleSearchKey handles keys while the search box is focused.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel):
		m.closeSearch()
		m.refreshList()
		m.focus = FocusSidebar
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		m.searchInput.Blur()
		m.focus = FocusSidebar
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.refreshList()
	return m, cmd
}

// closeSearch leaves search mode and clears the filter.
func (m *Model) closeSearch() {
	m.searching = false
	m.searchInput.SetValue("")
	m.searchInput.Blur()
}

// submit admits the composer prompt through the session manager and
// starts the background completion.
func (m Model) submit() (tea.Model, tea.Cmd) {
	prompt := m.input.Value()

	convID, err := m.mgr.Send(prompt)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrEmptyPrompt):
			// Nothing to send.
		case errors.Is(err, session.ErrBusy):
			m.setStatus("Waiting for the current reply to finish...", false)
		default:
			m.setStatus(err.Error(), true)
		}
		return m, nil
	}

	m.input.SetValue("")
	m.closeSearch()
	m.refreshList()
	m.refreshTranscript()
	m.setStatus("", false)

	return m, tea.Batch(
		CompleteCmd(m.mgr, convID, prompt),
		m.spinner.Tick,
	)
}

// updateComponents forwards messages the model does not handle itself.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/riyl-tui/internal/model"
	"github.com/jeranaias/riyl-tui/internal/session"
	"github.com/jeranaias/riyl-tui/internal/ui/styles"
)

// =============================================================================
// FOCUS
// =============================================================================

// Focus identifies which region of the UI receives key input.
type Focus int

const (
	FocusInput   Focus = iota // Prompt composer
	FocusSidebar              // Conversation list
	FocusSearch               // Sidebar search box
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Session state
	mgr *session.Manager

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Focus
	focus Focus

	// Sidebar
	list      []*model.Conversation
	cursor    int
	searching bool

	// UI components
	viewport    viewport.Model
	input       textinput.Model
	searchInput textinput.Model
	spinner     spinner.Model

	// Markdown rendering for bot replies
	renderer *glamour.TermRenderer

	// Key bindings
	keyMap KeyMap

	// Status bar
	status      string
	statusError bool
}

// New creates a new chat model over the session manager.
func New(mgr *session.Manager, theme *styles.Theme) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask for recommendations (e.g. an artist you like)..."
	ti.CharLimit = 4000
	ti.Focus()

	si := textinput.New()
	si.Prompt = "/ "
	si.Placeholder = "Search chats..."
	si.CharLimit = 256

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII spinner frames render on every terminal.
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(72),
	)
	if err != nil {
		renderer = nil // Fall back to plain text rendering
	}

	m := Model{
		mgr:         mgr,
		theme:       theme,
		focus:       FocusInput,
		viewport:    vp,
		input:       ti,
		searchInput: si,
		spinner:     sp,
		renderer:    renderer,
		keyMap:      DefaultKeyMap(),
	}
	m.refreshList()
	m.refreshTranscript()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// refreshList reloads the sidebar from the manager, applying the search
// filter when one is active. The cursor follows the active conversation
// when it is still in the list.
func (m *Model) refreshList() {
	if m.searching && m.searchInput.Value() != "" {
		m.list = m.mgr.Search(m.searchInput.Value())
	} else {
		m.list = m.mgr.Conversations()
	}

	m.cursor = 0
	activeID := m.mgr.ActiveID()
	for i, conv := range m.list {
		if conv.ID == activeID {
			m.cursor = i
			break
		}
	}
	if m.cursor >= len(m.list) {
		m.cursor = 0
	}
}

// refreshTranscript re-renders the active conversation into the viewport.
func (m *Model) refreshTranscript() {
	active := m.mgr.Active()
	if active == nil {
		m.viewport.SetContent(m.emptyTranscript())
		return
	}
	m.viewport.SetContent(m.renderConversation(active))
	m.viewport.GotoBottom()
}

// selected returns the conversation under the sidebar cursor, or nil.
func (m *Model) selected() *model.Conversation {
	if m.cursor < 0 || m.cursor >= len(m.list) {
		return nil
	}
	return m.list[m.cursor]
}

// setStatus sets a transient status bar message.
func (m *Model) setStatus(text string, isError bool) {
	m.status = text
	m.statusError = isError
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.cancel.abort()
			return m, tea.Quit

		case tea.KeyEsc:
			if m.cancel.abort() {
				m.statusNote = "cancelled"
			}
			return m, nil

		case tea.KeyEnter:
			return m, m.handleSubmit()
		}

	case TranscriptChangedMsg:
		m.refreshTranscript()
		return m, nil

	case VesselsReloadedMsg:
		m.statusNote = fmt.Sprintf("fleet updated: %d vessel(s)", msg.Count)
		return m, nil

	case turnDoneMsg:
		m.spinner.Stop()
		m.statusNote = ""
		m.refreshTranscript()
		return m, nil
	}

	// Spinner animation frames also dirty the pending message line.
	if cmd := m.spinner.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
		m.refreshTranscript()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.chatViewport, cmd = m.chatViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleSubmit starts a turn from the input line. Submissions while a turn
// is in flight are ignored, matching the single-turn-at-a-time contract.
func (m *Model) handleSubmit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if m.cancel.active() {
		m.statusNote = "a turn is already in flight"
		return nil
	}

	m.input.Reset()
	m.statusNote = ""
	return tea.Batch(m.submitCmd(text), m.spinner.Start())
}

// refreshTranscript re-renders the conversation into the scrollback viewport
// and follows the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	frame := ""
	if m.spinner.Active() {
		frame = m.spinner.Frame()
	}
	view := m.transcript.Render(m.orch.Messages(), m.orch.PendingID(), frame)
	m.chatViewport.SetContent(view)
	m.chatViewport.GotoBottom()
}

// resize recomputes the layout. The map panel takes the upper third of the
// interior; the chat viewport gets the rest minus the input and status rows.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.topBanner.SetWidth(width)
	m.bottomBanner.SetWidth(width)
	m.transcript.SetWidth(width - 2)
	m.input.Width = width - 6

	mapHeight := height / 3
	if mapHeight < 6 {
		mapHeight = 6
	}
	m.mapPanel.SetSize(width-4, mapHeight-3)

	// banners (2) + map box + input box (3) + status bar (1)
	chatHeight := height - 2 - mapHeight - 3 - 1
	if chatHeight < 3 {
		chatHeight = 3
	}
	if !m.ready {
		m.chatViewport = newChatViewport(width-2, chatHeight)
		m.ready = true
	} else {
		m.chatViewport.Width = width - 2
		m.chatViewport.Height = chatHeight
	}
}

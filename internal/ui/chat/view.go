// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// VIEW
// =============================================================================

func newChatViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "initializing..."
	}

	var b strings.Builder

	if m.cfg.Security.BannerEnabled {
		b.WriteString(m.topBanner.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderMapBox())
	b.WriteString("\n")

	b.WriteString(m.chatViewport.View())
	b.WriteString("\n")

	b.WriteString(m.renderInputBox())
	b.WriteString("\n")

	b.WriteString(m.renderStatusBar())

	if m.cfg.Security.BannerEnabled {
		b.WriteString("\n")
		b.WriteString(m.bottomBanner.View())
	}

	return b.String()
}

func (m *Model) renderMapBox() string {
	var body string
	if vp, vessels, ok := m.visibleFleet(); ok {
		body = m.mapPanel.Render(vp, vessels)
	} else {
		body = m.mapPanel.RenderEmpty()
	}
	title := m.theme.PanelTitle.Render(" AIS Map ")
	box := m.theme.PanelBorder.Width(m.width - 2).Render(body)
	return title + "\n" + box
}

func (m *Model) renderInputBox() string {
	return m.theme.InputBorder.Width(m.width - 2).Render(m.input.View())
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s | history: %d", m.orch.State(), m.orch.HistoryLen())
	if m.statusNote != "" {
		left += " | " + m.statusNote
	}
	right := "enter: send  esc: cancel  ctrl+c: quit "

	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return m.theme.StatusBar.Render(left + strings.Repeat(" ", pad) + right)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive TUI: the conversation pane, the
// map panel, input handling, and turn lifecycle plumbing between the
// Bubble Tea event loop and the agent orchestrator.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/amis-tui/internal/agent"
	"github.com/jeranaias/amis-tui/internal/ais"
	"github.com/jeranaias/amis-tui/internal/config"
	"github.com/jeranaias/amis-tui/internal/mapview"
	"github.com/jeranaias/amis-tui/internal/ui/components"
	"github.com/jeranaias/amis-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// TranscriptChangedMsg is sent from the orchestrator's onChange hook when the
// conversation content mutates mid-turn (streamed deltas, placeholder swaps).
type TranscriptChangedMsg struct{}

// VesselsReloadedMsg is sent when the fleet is replaced (feed refetch or
// watched-file reload) so the map panel re-renders.
type VesselsReloadedMsg struct{ Count int }

// turnDoneMsg signals that a Submit call returned and the turn has settled
// one way or another.
type turnDoneMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model for the AMIS TUI.
type Model struct {
	cfg   *config.Config
	theme styles.Theme

	orch    *agent.Orchestrator
	surface *mapview.Surface
	cancel  cancelManager

	input        textinput.Model
	transcript   *Transcript
	chatViewport viewport.Model
	mapPanel     *MapPanel
	spinner      components.Spinner
	topBanner    *components.ClassificationBanner
	bottomBanner *components.ClassificationBanner

	width  int
	height int
	ready  bool

	statusNote string
}

// NewModel wires the root model from its collaborators.
func NewModel(cfg *config.Config, orch *agent.Orchestrator, surface *mapview.Surface) *Model {
	theme := styles.ForName(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Message the assistant..."
	input.CharLimit = 4000
	input.Focus()

	return &Model{
		cfg:          cfg,
		theme:        theme,
		orch:         orch,
		surface:      surface,
		input:        input,
		transcript:   NewTranscript(theme, cfg.UI.MarkdownRendering),
		mapPanel:     NewMapPanel(theme),
		spinner:      components.NewSpinner(),
		topBanner:    components.NewClassificationBanner(cfg.Security.Classification),
		bottomBanner: components.NewClassificationBanner(cfg.Security.Classification),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// submitCmd runs the turn on its own goroutine. Submit blocks until the turn
// settles; the model keeps accepting UI events meanwhile and repaints off
// TranscriptChangedMsg notifications.
func (m *Model) submitCmd(text string) tea.Cmd {
	ctx := m.cancel.begin(context.Background())
	return func() tea.Msg {
		m.orch.Submit(ctx, text)
		m.cancel.clear()
		return turnDoneMsg{}
	}
}

// visibleFleet reads the current viewport and its vessels for the map panel.
// Any camera or source error renders as an empty view rather than crashing
// the paint path.
func (m *Model) visibleFleet() (mapview.Viewport, []ais.Vessel, bool) {
	vp, err := m.surface.CurrentViewport()
	if err != nil {
		return mapview.Viewport{}, nil, false
	}
	vessels, err := m.surface.VisibleVessels(context.Background(), vp)
	if err != nil {
		return vp, nil, true
	}
	return vp, vessels, true
}

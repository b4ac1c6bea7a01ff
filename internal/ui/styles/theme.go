// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the shared visual theme for the AMIS TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/amis-tui/internal/security"
)

// =============================================================================
// THEME
// =============================================================================

// Theme holds the lipgloss styles used across the UI.
type Theme struct {
	// Chat
	UserPrompt      lipgloss.Style
	AssistantPrompt lipgloss.Style
	UserText        lipgloss.Style
	AssistantText   lipgloss.Style
	ErrorText       lipgloss.Style
	PendingText     lipgloss.Style

	// Chrome
	StatusBar   lipgloss.Style
	InputBorder lipgloss.Style
	PanelBorder lipgloss.Style
	PanelTitle  lipgloss.Style

	// Map
	MapWater  lipgloss.Style
	MapVessel lipgloss.Style
	MapCenter lipgloss.Style
	MapLegend lipgloss.Style
}

// Dark returns the default dark theme.
func Dark() Theme {
	return Theme{
		UserPrompt:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		AssistantPrompt: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		UserText:        lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		AssistantText:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		ErrorText:       lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		PendingText:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true),

		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("8")),
		InputBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
		PanelBorder: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")),
		PanelTitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),

		MapWater:  lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		MapVessel: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		MapCenter: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		MapLegend: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Light returns a theme for light terminals.
func Light() Theme {
	t := Dark()
	t.UserText = lipgloss.NewStyle().Foreground(lipgloss.Color("0"))
	t.AssistantText = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	t.PendingText = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Italic(true)
	return t
}

// ForName returns the theme for a config theme name, falling back to dark.
// When the terminal profile reports no color support, the choice is academic,
// lipgloss degrades on its own.
func ForName(name string) Theme {
	if name == "light" || (name == "" && termenv.DefaultOutput().HasDarkBackground() == false) {
		return Light()
	}
	return Dark()
}

// =============================================================================
// CLASSIFICATION COLORS
// =============================================================================

// BannerStyle returns the banner style for a classification marking, using
// the standard marking colors: green for unclassified, purple for CUI, blue
// for confidential, red for secret and above.
func BannerStyle(classification string) lipgloss.Style {
	bg := lipgloss.Color("28") // green
	switch security.ParseLevel(classification) {
	case security.LevelCUI:
		bg = lipgloss.Color("91") // purple
	case security.LevelConfidential:
		bg = lipgloss.Color("27") // blue
	case security.LevelSecret, security.LevelTopSecret:
		bg = lipgloss.Color("160") // red
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(bg).
		Bold(true)
}

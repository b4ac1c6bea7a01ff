// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the AMIS TUI.
//
// Classification Banner Component
// Per DoDI 5200.48 marking requirements, the classification banner renders
// at both the top and the bottom of the screen.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/amis-tui/internal/security"
	"github.com/jeranaias/amis-tui/internal/ui/styles"
)

// =============================================================================
// CLASSIFICATION BANNER COMPONENT
// =============================================================================

// ClassificationBanner displays the security classification marking as a
// full-width line.
type ClassificationBanner struct {
	marking string
	width   int
}

// NewClassificationBanner creates a banner for the given marking. Markings
// that do not parse fall back to UNCLASSIFIED.
func NewClassificationBanner(marking string) *ClassificationBanner {
	return &ClassificationBanner{
		marking: security.Normalize(marking),
		width:   80,
	}
}

// SetWidth updates the banner width for full-width rendering.
func (b *ClassificationBanner) SetWidth(width int) {
	if width > 0 {
		b.width = width
	}
}

// Marking returns the current classification marking.
func (b *ClassificationBanner) Marking() string {
	return b.marking
}

// View renders the banner as a single full-width line with decorative block
// characters on both sides:
//
//	(block chars) UNCLASSIFIED (block chars)
func (b *ClassificationBanner) View() string {
	style := styles.BannerStyle(b.marking)

	blockChar := "█"
	textWidth := len(b.marking) + 2 // spaces around the marking
	availableForBlocks := b.width - textWidth
	if availableForBlocks < 8 {
		availableForBlocks = 8
	}
	blocksPerSide := availableForBlocks / 2

	content := strings.Repeat(blockChar, blocksPerSide) +
		" " + b.marking + " " +
		strings.Repeat(blockChar, blocksPerSide)

	contentLen := lipgloss.Width(content)
	if contentLen < b.width {
		extra := b.width - contentLen
		content = strings.Repeat(blockChar, extra/2) + content + strings.Repeat(blockChar, extra-extra/2)
	} else if contentLen > b.width {
		content = b.marking
	}

	return style.
		Width(b.width).
		MaxWidth(b.width).
		Align(lipgloss.Center).
		Render(content)
}

// ViewCompact renders a narrower variant using dashes instead of blocks:
//
//	=== UNCLASSIFIED ===
func (b *ClassificationBanner) ViewCompact() string {
	style := styles.BannerStyle(b.marking)

	textWidth := len(b.marking) + 2
	availableForDashes := b.width - textWidth
	if availableForDashes < 4 {
		availableForDashes = 4
	}
	dashesPerSide := availableForDashes / 2

	content := strings.Repeat("=", dashesPerSide) +
		" " + b.marking + " " +
		strings.Repeat("=", dashesPerSide)

	return style.
		Width(b.width).
		MaxWidth(b.width).
		Align(lipgloss.Center).
		Render(content)
}

// Height returns the height of the banner (always 1 line).
func (b *ClassificationBanner) Height() int {
	return 1
}

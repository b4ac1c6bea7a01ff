// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/amis-tui/internal/ais"
	"github.com/jeranaias/amis-tui/internal/mapview"
	"github.com/jeranaias/amis-tui/internal/ui/styles"
	"github.com/jeranaias/amis-tui/internal/util"
)

// =============================================================================
// MAP PANEL
// =============================================================================

const (
	waterRune  = '·'
	vesselRune = '▲'
	centerRune = '+'
)

// MapPanel renders the current map viewport as a character grid: vessels in
// the viewport projected onto cells, the camera center marked, everything
// else water.
type MapPanel struct {
	theme  styles.Theme
	width  int
	height int
}

// NewMapPanel creates a map panel renderer.
func NewMapPanel(theme styles.Theme) *MapPanel {
	return &MapPanel{theme: theme, width: 40, height: 12}
}

// SetSize sets the interior grid dimensions in cells.
func (p *MapPanel) SetSize(width, height int) {
	if width > 4 {
		p.width = width
	}
	if height > 2 {
		p.height = height
	}
}

// Render draws the viewport grid plus a legend line. Vessels outside the
// viewport bounds are skipped; overlapping vessels collapse into one cell.
func (p *MapPanel) Render(vp mapview.Viewport, vessels []ais.Vessel) string {
	grid := make([][]rune, p.height)
	for y := range grid {
		grid[y] = make([]rune, p.width)
		for x := range grid[y] {
			grid[y][x] = waterRune
		}
	}

	plotted := 0
	for _, v := range vessels {
		if !v.HasPosition() {
			continue
		}
		x, y, ok := p.project(vp.Bounds, *v.Position)
		if !ok {
			continue
		}
		grid[y][x] = vesselRune
		plotted++
	}

	// Center marker last so it is never hidden under a vessel glyph.
	if cx, cy, ok := p.project(vp.Bounds, vp.Center); ok {
		grid[cy][cx] = centerRune
	}

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.renderRow(row))
	}
	b.WriteString("\n")
	b.WriteString(p.legend(vp, plotted))
	return b.String()
}

// RenderEmpty is shown before the camera has a view.
func (p *MapPanel) RenderEmpty() string {
	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center,
		p.theme.MapLegend.Render("map loading..."))
}

// project maps a position to grid coordinates. Rows run north to south.
// Boxes that cross the antimeridian measure longitude offsets modulo 360.
func (p *MapPanel) project(b mapview.Bounds, pos ais.Position) (int, int, bool) {
	if !b.Contains(pos) {
		return 0, 0, false
	}
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.LonSpan()
	if latSpan <= 0 || lonSpan <= 0 {
		return 0, 0, false
	}
	lonOffset := pos.Lon - b.MinLon
	if lonOffset < 0 {
		lonOffset += 360
	}
	x := int(lonOffset / lonSpan * float64(p.width))
	y := int((b.MaxLat - pos.Lat) / latSpan * float64(p.height))
	if x >= p.width {
		x = p.width - 1
	}
	if y >= p.height {
		y = p.height - 1
	}
	return x, y, true
}

func (p *MapPanel) renderRow(row []rune) string {
	var b strings.Builder
	run := make([]rune, 0, len(row))
	flush := func(style lipgloss.Style) {
		if len(run) > 0 {
			b.WriteString(style.Render(string(run)))
			run = run[:0]
		}
	}
	var last rune
	for _, r := range row {
		if r != last && len(run) > 0 {
			flush(p.styleFor(last))
		}
		run = append(run, r)
		last = r
	}
	flush(p.styleFor(last))
	return b.String()
}

func (p *MapPanel) styleFor(r rune) lipgloss.Style {
	switch r {
	case vesselRune:
		return p.theme.MapVessel
	case centerRune:
		return p.theme.MapCenter
	default:
		return p.theme.MapWater
	}
}

func (p *MapPanel) legend(vp mapview.Viewport, plotted int) string {
	text := fmt.Sprintf("%s  z%.1f  %d vessel(s)", vp.Center.String(), vp.Zoom, plotted)
	return p.theme.MapLegend.Render(util.TruncateWidth(text, p.width))
}

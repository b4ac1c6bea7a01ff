// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mapview exposes a narrow imperative surface over the live map:
// fly the camera, read the viewport, compute visible vessels, and summarize
// them for the assistant.
package mapview

import (
	"errors"
	"math"
	"sync"

	"github.com/jeranaias/amis-tui/internal/ais"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotReady indicates the map has not finished its initial load, or
	// its viewport is not yet queryable.
	ErrNotReady = errors.New("map not ready")

	// ErrBusy indicates a camera movement is already in progress. Overlapping
	// FlyTo calls are rejected rather than queued: interleaved camera
	// commands leave the viewport in an unpredictable state.
	ErrBusy = errors.New("camera busy")

	// ErrInvalidTarget indicates an out-of-range coordinate target.
	ErrInvalidTarget = errors.New("target coordinates out of range")
)

// =============================================================================
// GEOMETRY
// =============================================================================

// Bounds is a geographic bounding box, inclusive on all edges. A box whose
// MinLon is greater than its MaxLon crosses the antimeridian and covers the
// two longitude ranges [MinLon, 180] and [-180, MaxLon].
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether the position lies inside the box.
func (b Bounds) Contains(p ais.Position) bool {
	if p.Lat < b.MinLat || p.Lat > b.MaxLat {
		return false
	}
	if b.MinLon <= b.MaxLon {
		return p.Lon >= b.MinLon && p.Lon <= b.MaxLon
	}
	// Wrapped box.
	return p.Lon >= b.MinLon || p.Lon <= b.MaxLon
}

// LonSpan returns the longitudinal extent of the box in degrees.
func (b Bounds) LonSpan() float64 {
	span := b.MaxLon - b.MinLon
	if span < 0 {
		span += 360
	}
	return span
}

// wrapLon normalizes a longitude into [-180, 180].
func wrapLon(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Viewport is the map's current geographic window.
type Viewport struct {
	Center ais.Position `json:"center"`
	Zoom   float64      `json:"zoom"`
	Bounds Bounds       `json:"bounds"`
}

// =============================================================================
// CAMERA INTERFACE
// =============================================================================

// Camera is the live map handle consumed by the Surface. Implementations
// wrap whatever actually renders the map; the Surface only needs movement,
// viewport reads, a move-end signal, and a best-effort snapshot.
type Camera interface {
	// Loaded reports whether the map finished its initial load.
	Loaded() bool

	// FlyTo starts a camera animation toward the target. It returns a
	// one-shot channel that closes when the movement ends.
	FlyTo(center ais.Position, zoom float64) <-chan struct{}

	// Center returns the current camera center.
	Center() ais.Position

	// Zoom returns the current zoom level.
	Zoom() float64

	// Bounds returns the current viewport bounds. ok is false while the
	// bounds are unavailable.
	Bounds() (b Bounds, ok bool)

	// Snapshot returns an encoded image of the rendered map. Best effort:
	// implementations without a rendering surface return an error.
	Snapshot() ([]byte, error)
}

// =============================================================================
// TERMINAL CAMERA
// =============================================================================

// TerminalCamera is the in-process Camera behind the TUI map panel. There is
// no real projection engine: the viewport span is derived from the zoom level
// with web-mercator-style halving per zoom step.
type TerminalCamera struct {
	mu     sync.Mutex
	loaded bool
	center ais.Position
	zoom   float64
	aspect float64 // width/height of the displayed window
}

// NewTerminalCamera creates a camera at the given initial view. The camera
// reports NotReady until Load is called.
func NewTerminalCamera(center ais.Position, zoom float64) *TerminalCamera {
	return &TerminalCamera{
		center: center,
		zoom:   zoom,
		aspect: 2.0,
	}
}

// Load marks the initial map load as complete.
func (c *TerminalCamera) Load() {
	c.mu.Lock()
	c.loaded = true
	c.mu.Unlock()
}

// Loaded reports whether Load has been called.
func (c *TerminalCamera) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// FlyTo jumps the camera to the target. Movement is instantaneous for a
// terminal projection, so the move-end channel closes immediately.
func (c *TerminalCamera) FlyTo(center ais.Position, zoom float64) <-chan struct{} {
	c.mu.Lock()
	c.center = center
	c.zoom = zoom
	c.mu.Unlock()

	done := make(chan struct{})
	close(done)
	return done
}

// Center returns the current camera center.
func (c *TerminalCamera) Center() ais.Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.center
}

// Zoom returns the current zoom level.
func (c *TerminalCamera) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

// Bounds derives the viewport box from center and zoom: the whole world at
// zoom 0, halving the span per zoom step, clamped at the poles.
func (c *TerminalCamera) Bounds() (Bounds, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return Bounds{}, false
	}

	lonSpan := 360.0 / math.Pow(2, c.zoom)
	latSpan := lonSpan / c.aspect

	b := Bounds{
		MinLat: math.Max(c.center.Lat-latSpan/2, -90),
		MaxLat: math.Min(c.center.Lat+latSpan/2, 90),
	}
	if lonSpan >= 360 {
		b.MinLon, b.MaxLon = -180, 180
	} else {
		// Wrap at the antimeridian; MinLon > MaxLon marks a wrapped box.
		b.MinLon = wrapLon(c.center.Lon - lonSpan/2)
		b.MaxLon = wrapLon(c.center.Lon + lonSpan/2)
	}
	return b, true
}

// Snapshot always fails for the terminal projection: there is no raster
// surface to encode. Summary capture treats this as a degraded, non-fatal
// outcome.
func (c *TerminalCamera) Snapshot() ([]byte, error) {
	return nil, errors.New("terminal camera has no raster surface")
}

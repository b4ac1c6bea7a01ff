// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapview

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/amis-tui/internal/ais"
)

// =============================================================================
// VESSEL SOURCE
// =============================================================================

// VesselSource supplies the vessels inside a bounding box. The SQLite store
// satisfies this through an adapter; tests use an in-memory slice.
type VesselSource interface {
	VesselsIn(ctx context.Context, b Bounds) ([]ais.Vessel, error)
}

// VesselSourceFunc adapts a function to the VesselSource interface.
type VesselSourceFunc func(ctx context.Context, b Bounds) ([]ais.Vessel, error)

// VesselsIn implements VesselSource.
func (f VesselSourceFunc) VesselsIn(ctx context.Context, b Bounds) ([]ais.Vessel, error) {
	return f(ctx, b)
}

// SliceSource is a VesselSource over an in-memory fleet.
type SliceSource struct {
	mu      sync.RWMutex
	vessels []ais.Vessel
}

// NewSliceSource creates a source over the given fleet.
func NewSliceSource(vessels []ais.Vessel) *SliceSource {
	return &SliceSource{vessels: vessels}
}

// Replace swaps the fleet. Used by feed reloads.
func (s *SliceSource) Replace(vessels []ais.Vessel) {
	s.mu.Lock()
	s.vessels = vessels
	s.mu.Unlock()
}

// VesselsIn returns the vessels whose position lies inside b.
func (s *SliceSource) VesselsIn(_ context.Context, b Bounds) ([]ais.Vessel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var inside []ais.Vessel
	for _, v := range s.vessels {
		if v.HasPosition() && b.Contains(*v.Position) {
			inside = append(inside, v)
		}
	}
	return inside, nil
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the full map summary handed back as a tool result.
type Summary struct {
	Count      int           `json:"count"`
	Center     *ais.Position `json:"center,omitempty"`
	Zoom       *float64      `json:"zoom,omitempty"`
	Bounds     *Bounds       `json:"bounds,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"` // base64, omitted on capture failure
	Biggest    *VesselFact   `json:"biggestVessel,omitempty"`
	Smallest   *VesselFact   `json:"smallestVessel,omitempty"`
	Fastest    *VesselFact   `json:"fastestVessel,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// =============================================================================
// SURFACE
// =============================================================================

// DefaultSettleDelay is the pause after a camera movement completes before
// viewport reads are trusted. Tile loading and marker placement lag the
// camera by a beat.
const DefaultSettleDelay = 300 * time.Millisecond

// Surface is the map capability surface handed to the turn orchestrator.
// It serializes camera movements, waits out the settle delay, and answers
// viewport and summary queries.
type Surface struct {
	camera      Camera
	source      VesselSource
	settleDelay time.Duration

	mu     sync.Mutex
	moving bool
}

// NewSurface creates a Surface over the given camera and vessel source.
func NewSurface(camera Camera, source VesselSource, settleDelay time.Duration) *Surface {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Surface{
		camera:      camera,
		source:      source,
		settleDelay: settleDelay,
	}
}

// FlyTo moves the camera to the target and returns once the movement has
// ended and the settle delay has passed, so viewport reads immediately after
// reflect the destination.
//
// Fails with ErrNotReady before the initial map load, ErrBusy while another
// movement is in progress, and ErrInvalidTarget for out-of-range coordinates.
func (s *Surface) FlyTo(ctx context.Context, target ais.Position, zoom float64) error {
	if !s.camera.Loaded() {
		return ErrNotReady
	}
	if !target.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	s.mu.Lock()
	if s.moving {
		s.mu.Unlock()
		return ErrBusy
	}
	s.moving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.moving = false
		s.mu.Unlock()
	}()

	moveEnd := s.camera.FlyTo(target, zoom)
	select {
	case <-moveEnd:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-time.After(s.settleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// CurrentViewport returns the camera's center, zoom, and bounds. Fails with
// ErrNotReady while the map or its bounds are unavailable.
func (s *Surface) CurrentViewport() (Viewport, error) {
	if !s.camera.Loaded() {
		return Viewport{}, ErrNotReady
	}
	bounds, ok := s.camera.Bounds()
	if !ok {
		return Viewport{}, ErrNotReady
	}
	return Viewport{
		Center: s.camera.Center(),
		Zoom:   s.camera.Zoom(),
		Bounds: bounds,
	}, nil
}

// VisibleVessels returns the vessels whose position lies within the
// viewport's bounds. Records lacking a position are excluded.
func (s *Surface) VisibleVessels(ctx context.Context, vp Viewport) ([]ais.Vessel, error) {
	vessels, err := s.source.VesselsIn(ctx, vp.Bounds)
	if err != nil {
		return nil, fmt.Errorf("vessel query failed: %w", err)
	}

	// The source may answer from a coarser index; re-check containment.
	visible := vessels[:0]
	for _, v := range vessels {
		if v.HasPosition() && vp.Bounds.Contains(*v.Position) {
			visible = append(visible, v)
		}
	}
	return visible, nil
}

// Summarize produces the full viewport summary for the get_map_summary tool.
// Snapshot capture is best effort and never fails the summary; an error from
// the viewport or vessel query degrades the result (count 0, error message)
// instead of failing it, so the backend can react in natural language.
func (s *Surface) Summarize(ctx context.Context) Summary {
	vp, err := s.CurrentViewport()
	if err != nil {
		return Summary{Error: err.Error()}
	}

	visible, err := s.VisibleVessels(ctx, vp)
	if err != nil {
		return Summary{
			Center: &vp.Center,
			Zoom:   &vp.Zoom,
			Bounds: &vp.Bounds,
			Error:  err.Error(),
		}
	}

	stats := SummaryStatistics(visible)
	summary := Summary{
		Count:    stats.Count,
		Center:   &vp.Center,
		Zoom:     &vp.Zoom,
		Bounds:   &vp.Bounds,
		Biggest:  stats.Biggest,
		Smallest: stats.Smallest,
		Fastest:  stats.Fastest,
	}

	if img, err := s.camera.Snapshot(); err == nil && len(img) > 0 {
		summary.Screenshot = base64.StdEncoding.EncodeToString(img)
	}
	return summary
}

// DescribeScene renders a short textual description of the current viewport
// and its vessels. Sent to the backend as the image_description of a zoom
// turn, standing in for the pixels a browser map would screenshot.
func (s *Surface) DescribeScene(ctx context.Context) (string, error) {
	vp, err := s.CurrentViewport()
	if err != nil {
		return "", err
	}
	visible, err := s.VisibleVessels(ctx, vp)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Map centered at %s, zoom %.1f. %d vessel(s) visible.",
		vp.Center, vp.Zoom, len(visible))

	const maxListed = 5
	for i, v := range visible {
		if i >= maxListed {
			fmt.Fprintf(&b, " (+%d more)", len(visible)-maxListed)
			break
		}
		fmt.Fprintf(&b, " %s", v.DisplayName())
		if v.Info.Type != "" {
			fmt.Fprintf(&b, " (%s)", v.Info.Type)
		}
		if v.SpeedKnots != nil {
			fmt.Fprintf(&b, " at %.1f kn", *v.SpeedKnots)
		}
		b.WriteString(";")
	}
	return b.String(), nil
}

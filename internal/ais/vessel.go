// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ais provides AIS vessel data: wire types, the vessel feed client,
// a SQLite-backed store with bounding-box queries, and sample data generation
// for offline operation.
package ais

import "fmt"

// =============================================================================
// POSITION
// =============================================================================

// Position is a WGS84 coordinate pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinates are inside the WGS84 ranges.
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// String formats the position for display.
func (p Position) String() string {
	return fmt.Sprintf("%.4f, %.4f", p.Lat, p.Lon)
}

// =============================================================================
// VESSEL
// =============================================================================

// VesselInfo holds the static identity block of an AIS record.
type VesselInfo struct {
	Name     string `json:"name,omitempty"`
	CallSign string `json:"callSign,omitempty"`
	Type     string `json:"type,omitempty"`
	IMO      string `json:"imo,omitempty"`
}

// Vessel is a single AIS record as delivered by the vessel feed.
//
// Optional numeric fields are pointers: a feed record legitimately omits
// speed, heading, or dimensions, and "absent" must stay distinguishable from
// zero. Summary statistics depend on that distinction.
type Vessel struct {
	MMSI     string    `json:"MMSI"`
	Position *Position `json:"position,omitempty"`

	Heading          *float64 `json:"heading,omitempty"`
	SpeedKnots       *float64 `json:"speed,omitempty"`
	CourseOverGround *float64 `json:"COG,omitempty"`

	Info VesselInfo `json:"vesselInfo"`

	Length *float64 `json:"Length,omitempty"`
	Width  *float64 `json:"Width,omitempty"`
	Draft  *float64 `json:"Draft,omitempty"`

	TransceiverClass string `json:"TransceiverClass,omitempty"`
}

// HasPosition reports whether the vessel carries a valid position. Vessels
// without one cannot be placed on the map and are excluded from viewport
// queries.
func (v *Vessel) HasPosition() bool {
	return v.Position != nil && v.Position.Valid()
}

// Area returns the deck footprint (length times width) and whether both
// dimensions are present. A vessel missing either dimension has no footprint
// and is ineligible for size comparisons.
func (v *Vessel) Area() (float64, bool) {
	if v.Length == nil || v.Width == nil {
		return 0, false
	}
	return *v.Length * *v.Width, true
}

// DisplayName returns the vessel name, falling back to the MMSI.
func (v *Vessel) DisplayName() string {
	if v.Info.Name != "" {
		return v.Info.Name
	}
	return v.MMSI
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapview

import "github.com/jeranaias/amis-tui/internal/ais"

// =============================================================================
// SUMMARY STATISTICS
// =============================================================================

// VesselFact is the compact vessel description carried in a map summary.
type VesselFact struct {
	MMSI       string   `json:"mmsi"`
	Name       string   `json:"name,omitempty"`
	Type       string   `json:"type,omitempty"`
	SpeedKnots *float64 `json:"speed_knots,omitempty"`
	Length     *float64 `json:"length,omitempty"`
	Width      *float64 `json:"width,omitempty"`
}

// Stats holds the computed superlatives over a visible vessel set. A nil
// entry means no vessel was eligible for that category.
type Stats struct {
	Count    int         `json:"count"`
	Biggest  *VesselFact `json:"biggestVessel,omitempty"`
	Smallest *VesselFact `json:"smallestVessel,omitempty"`
	Fastest  *VesselFact `json:"fastestVessel,omitempty"`
}

// SummaryStatistics computes count, biggest, smallest, and fastest over the
// visible set.
//
// Size comparisons use the deck footprint (length times width) and only
// consider vessels reporting both dimensions. Speed comparisons only consider
// vessels reporting a speed. Ties keep the first-seen vessel.
func SummaryStatistics(visible []ais.Vessel) Stats {
	stats := Stats{Count: len(visible)}

	var (
		biggestIdx, smallestIdx, fastestIdx = -1, -1, -1
		biggestArea, smallestArea           float64
		fastestSpeed                        float64
	)

	for i := range visible {
		v := &visible[i]

		if area, ok := v.Area(); ok {
			if biggestIdx < 0 || area > biggestArea {
				biggestIdx, biggestArea = i, area
			}
			if smallestIdx < 0 || area < smallestArea {
				smallestIdx, smallestArea = i, area
			}
		}

		if v.SpeedKnots != nil {
			if fastestIdx < 0 || *v.SpeedKnots > fastestSpeed {
				fastestIdx, fastestSpeed = i, *v.SpeedKnots
			}
		}
	}

	if biggestIdx >= 0 {
		stats.Biggest = vesselFact(&visible[biggestIdx])
	}
	if smallestIdx >= 0 {
		stats.Smallest = vesselFact(&visible[smallestIdx])
	}
	if fastestIdx >= 0 {
		stats.Fastest = vesselFact(&visible[fastestIdx])
	}
	return stats
}

func vesselFact(v *ais.Vessel) *VesselFact {
	return &VesselFact{
		MMSI:       v.MMSI,
		Name:       v.Info.Name,
		Type:       v.Info.Type,
		SpeedKnots: v.SpeedKnots,
		Length:     v.Length,
		Width:      v.Width,
	}
}

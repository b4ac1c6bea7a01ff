// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ais

import (
	"fmt"
	"math/rand"
)

// =============================================================================
// SAMPLE DATA GENERATION
// =============================================================================

// sampleRegion is a named bounding box that sample vessels are scattered in.
type sampleRegion struct {
	Name   string
	Prefix string // three-letter vessel name prefix
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// sampleRegions covers the major shipping concentrations used for demo and
// offline operation.
var sampleRegions = []sampleRegion{
	{"Chesapeake Bay", "CHE", 36.9, 39.4, -76.5, -75.9},
	{"English Channel", "ENG", 49.5, 50.8, -2.0, 1.5},
	{"Strait of Malacca", "MAL", 1.5, 5.5, 98.5, 103.5},
	{"Gulf of Mexico", "GUL", 25.0, 29.5, -95.0, -85.0},
	{"Eastern Mediterranean", "MED", 31.5, 36.0, 27.0, 35.0},
	{"North Sea", "NOR", 53.0, 58.0, 1.0, 7.0},
	{"South China Sea", "SCS", 10.0, 20.0, 110.0, 118.0},
	{"Persian Gulf", "PER", 24.5, 29.0, 50.0, 56.0},
	{"Sea of Japan", "JAP", 36.0, 42.0, 130.0, 138.0},
	{"Caribbean Sea", "CAR", 12.0, 18.0, -80.0, -65.0},
}

// vesselTypes are the AIS ship type labels assigned to sample vessels.
var vesselTypes = []string{
	"Cargo",
	"Tanker",
	"Fishing",
	"Passenger",
	"Tug",
	"Military",
	"Sailing",
	"Pleasure Craft",
}

// vesselsPerRegion is the sample fleet size per region.
const vesselsPerRegion = 100

// SampleVessels generates a deterministic sample fleet: vesselsPerRegion
// vessels scattered across each of the sample regions. The same seed always
// produces the same fleet, which keeps demo sessions and tests reproducible.
func SampleVessels(seed int64) []Vessel {
	rng := rand.New(rand.NewSource(seed))
	vessels := make([]Vessel, 0, len(sampleRegions)*vesselsPerRegion)

	for _, region := range sampleRegions {
		for i := 0; i < vesselsPerRegion; i++ {
			vessels = append(vessels, sampleVessel(rng, region, i))
		}
	}
	return vessels
}

// sampleVessel builds one randomized vessel inside the given region.
func sampleVessel(rng *rand.Rand, region sampleRegion, ordinal int) Vessel {
	pos := Position{
		Lat: region.MinLat + rng.Float64()*(region.MaxLat-region.MinLat),
		Lon: region.MinLon + rng.Float64()*(region.MaxLon-region.MinLon),
	}

	speed := rng.Float64() * 25
	heading := rng.Float64() * 360
	cog := heading + (rng.Float64()-0.5)*10
	length := 20 + rng.Float64()*330
	width := 5 + rng.Float64()*55
	draft := 2 + rng.Float64()*18

	v := Vessel{
		MMSI:     fmt.Sprintf("%09d", 100000000+rng.Intn(900000000)),
		Position: &pos,
		Info: VesselInfo{
			Name:     fmt.Sprintf("%s-%04d", region.Prefix, ordinal),
			CallSign: sampleCallSign(rng),
			Type:     vesselTypes[rng.Intn(len(vesselTypes))],
			IMO:      fmt.Sprintf("IMO%07d", 1000000+rng.Intn(9000000)),
		},
		TransceiverClass: "A",
	}

	// Leave some fields absent, like a real feed does. Roughly one vessel in
	// ten reports no speed; one in ten reports no dimensions.
	if rng.Intn(10) != 0 {
		v.SpeedKnots = &speed
		v.Heading = &heading
		v.CourseOverGround = &cog
	}
	if rng.Intn(10) != 0 {
		v.Length = &length
		v.Width = &width
		v.Draft = &draft
	}
	return v
}

// sampleCallSign builds a call sign in the W-prefix format: W + three
// letters + four digits.
func sampleCallSign(rng *rand.Rand) string {
	letters := make([]byte, 3)
	for i := range letters {
		letters[i] = byte('A' + rng.Intn(26))
	}
	return fmt.Sprintf("W%s%04d", letters, rng.Intn(10000))
}

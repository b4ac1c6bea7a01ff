// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ais

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVesselDecodesFeedRecord(t *testing.T) {
	// Field names match the feed's wire shape exactly.
	payload := `{
		"MMSI": "367001234",
		"position": {"lat": 36.85, "lon": -76.29},
		"heading": 270.5,
		"speed": 12.3,
		"COG": 268.0,
		"vesselInfo": {"name": "EVER GIVEN", "callSign": "WABC1234", "type": "Cargo", "imo": "IMO9811000"},
		"Length": 399.9,
		"Width": 58.8,
		"Draft": 14.5,
		"TransceiverClass": "A"
	}`

	var v Vessel
	require.NoError(t, json.Unmarshal([]byte(payload), &v))

	assert.Equal(t, "367001234", v.MMSI)
	require.True(t, v.HasPosition())
	assert.InDelta(t, 36.85, v.Position.Lat, 1e-9)
	assert.Equal(t, "EVER GIVEN", v.Info.Name)
	require.NotNil(t, v.SpeedKnots)
	assert.InDelta(t, 12.3, *v.SpeedKnots, 1e-9)

	area, ok := v.Area()
	require.True(t, ok)
	assert.InDelta(t, 399.9*58.8, area, 1e-6)
}

func TestVesselOptionalFieldsStayAbsent(t *testing.T) {
	var v Vessel
	require.NoError(t, json.Unmarshal([]byte(`{"MMSI":"1","vesselInfo":{}}`), &v))

	assert.False(t, v.HasPosition())
	assert.Nil(t, v.SpeedKnots)
	if _, ok := v.Area(); ok {
		t.Error("vessel without dimensions must have no area")
	}
	assert.Equal(t, "1", v.DisplayName())
}

func TestPositionValidation(t *testing.T) {
	assert.True(t, Position{Lat: 36.85, Lon: -76.29}.Valid())
	assert.True(t, Position{Lat: -90, Lon: 180}.Valid())
	assert.False(t, Position{Lat: 91, Lon: 0}.Valid())
	assert.False(t, Position{Lat: 0, Lon: -181}.Valid())
}

func TestSampleVesselsDeterministic(t *testing.T) {
	a := SampleVessels(42)
	b := SampleVessels(42)
	c := SampleVessels(7)

	require.Len(t, a, len(sampleRegions)*vesselsPerRegion)
	assert.Equal(t, a, b, "same seed must produce the same fleet")
	assert.NotEqual(t, a, c, "different seeds should differ")
}

func TestSampleVesselsStayInsideRegions(t *testing.T) {
	fleet := SampleVessels(1)
	for i, region := range sampleRegions {
		for j := 0; j < vesselsPerRegion; j++ {
			v := fleet[i*vesselsPerRegion+j]
			require.True(t, v.HasPosition())
			pos := *v.Position
			if pos.Lat < region.MinLat || pos.Lat > region.MaxLat ||
				pos.Lon < region.MinLon || pos.Lon > region.MaxLon {
				t.Fatalf("vessel %s at %v escaped region %s", v.MMSI, pos, region.Name)
			}
		}
	}
}

func TestFeedClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"MMSI":"1","position":{"lat":1,"lon":2},"vesselInfo":{"name":"A"}}]`))
	}))
	defer server.Close()

	vessels, err := NewFeedClient(server.URL).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, vessels, 1)
	assert.Equal(t, "A", vessels[0].Info.Name)
}

func TestFeedClientFetchOrEmptyDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	vessels := NewFeedClient(server.URL).FetchOrEmpty(context.Background())
	require.NotNil(t, vessels)
	assert.Empty(t, vessels)
}

func TestStoreBoundingBoxQuery(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "vessels.db"))
	require.NoError(t, err)
	defer store.Close()

	lat := func(v float64) *Position { return &Position{Lat: v, Lon: -76.0} }
	fleet := []Vessel{
		{MMSI: "inside", Position: lat(37.0)},
		{MMSI: "edge", Position: &Position{Lat: 38.0, Lon: -76.0}},
		{MMSI: "outside", Position: &Position{Lat: 45.0, Lon: -76.0}},
		{MMSI: "nowhere"}, // no position: stored but never visible
	}

	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, fleet))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Box edges are inclusive.
	got, err := store.ByBoundingBox(ctx, 36.0, 38.0, -77.0, -75.0)
	require.NoError(t, err)

	mmsis := make([]string, 0, len(got))
	for _, v := range got {
		mmsis = append(mmsis, v.MMSI)
	}
	assert.ElementsMatch(t, []string{"inside", "edge"}, mmsis)
}

func TestStoreBoundingBoxWrapsAntimeridian(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "vessels.db"))
	require.NoError(t, err)
	defer store.Close()

	fleet := []Vessel{
		{MMSI: "east", Position: &Position{Lat: 0, Lon: 179.5}},
		{MMSI: "west", Position: &Position{Lat: 0, Lon: -179.5}},
		{MMSI: "greenwich", Position: &Position{Lat: 0, Lon: 0}},
	}

	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, fleet))

	// minLon > maxLon: the box crosses the dateline.
	got, err := store.ByBoundingBox(ctx, -10, 10, 170, -170)
	require.NoError(t, err)

	mmsis := make([]string, 0, len(got))
	for _, v := range got {
		mmsis = append(mmsis, v.MMSI)
	}
	assert.ElementsMatch(t, []string{"east", "west"}, mmsis)
}

func TestStoreReplaceAllIsAtomic(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "vessels.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.ReplaceAll(ctx, SampleVessels(3)[:50]))
	require.NoError(t, store.ReplaceAll(ctx, SampleVessels(3)[:10]))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, n, "second replacement must fully supersede the first")
}

func TestLoadFeedFileRejectsMalformed(t *testing.T) {
	_, err := LoadFeedFile([]byte(`{"not":"an array"}`))
	assert.Error(t, err)

	vessels, err := LoadFeedFile([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, vessels)
}

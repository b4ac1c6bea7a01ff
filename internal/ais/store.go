// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ais

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrStoreClosed = errors.New("vessel store closed")
)

// =============================================================================
// SCHEMA
// =============================================================================

// schemaSQL creates the vessel table. Position columns are split out of the
// JSON blob so bounding-box queries stay indexable; everything else rides in
// the record column verbatim.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS vessels (
	mmsi   TEXT PRIMARY KEY,
	lat    REAL,
	lon    REAL,
	record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vessels_lat ON vessels(lat);
CREATE INDEX IF NOT EXISTS idx_vessels_lon ON vessels(lon);
`

// =============================================================================
// VESSEL STORE
// =============================================================================

// Store is a SQLite-backed vessel store supporting bulk replacement from the
// feed and bounding-box queries for the viewport.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the vessel database at the given path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vessel database: %w", err)
	}

	// PERFORMANCE: single connection avoids SQLITE_BUSY under the pure Go
	// driver; WAL keeps readers unblocked during feed replacement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ReplaceAll atomically replaces the stored fleet with the given vessels.
// Vessels without a valid position are stored with NULL coordinates; they
// survive the round-trip but never match a bounding-box query.
func (s *Store) ReplaceAll(ctx context.Context, vessels []Vessel) error {
	if s.db == nil {
		return ErrStoreClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vessels"); err != nil {
		return fmt.Errorf("failed to clear vessels: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT OR REPLACE INTO vessels (mmsi, lat, lon, record) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range vessels {
		v := &vessels[i]
		record, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode vessel %s: %w", v.MMSI, err)
		}

		var lat, lon any
		if v.HasPosition() {
			lat, lon = v.Position.Lat, v.Position.Lon
		}
		if _, err := stmt.ExecContext(ctx, v.MMSI, lat, lon, string(record)); err != nil {
			return fmt.Errorf("failed to insert vessel %s: %w", v.MMSI, err)
		}
	}

	return tx.Commit()
}

// ByBoundingBox returns all vessels whose position falls inside the given
// latitude/longitude box, inclusive on all edges. minLon greater than maxLon
// marks a box that crosses the antimeridian; the query then matches the two
// ranges [minLon, 180] and [-180, maxLon].
func (s *Store) ByBoundingBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]Vessel, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	lonClause := "lon BETWEEN ? AND ?"
	if minLon > maxLon {
		lonClause = "(lon >= ? OR lon <= ?)"
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM vessels
		WHERE lat IS NOT NULL
		  AND lat BETWEEN ? AND ?
		  AND `+lonClause,
		minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("bounding box query failed: %w", err)
	}
	defer rows.Close()

	var vessels []Vessel
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan vessel row: %w", err)
		}
		var v Vessel
		if err := json.Unmarshal([]byte(record), &v); err != nil {
			return nil, fmt.Errorf("failed to decode vessel record: %w", err)
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

// All returns every stored vessel, positioned or not.
func (s *Store) All(ctx context.Context) ([]Vessel, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, "SELECT record FROM vessels")
	if err != nil {
		return nil, fmt.Errorf("vessel query failed: %w", err)
	}
	defer rows.Close()

	var vessels []Vessel
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("failed to scan vessel row: %w", err)
		}
		var v Vessel
		if err := json.Unmarshal([]byte(record), &v); err != nil {
			return nil, fmt.Errorf("failed to decode vessel record: %w", err)
		}
		vessels = append(vessels, v)
	}
	return vessels, rows.Err()
}

// Count returns the number of stored vessels.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, ErrStoreClosed
	}
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vessels").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("vessel count failed: %w", err)
	}
	return n, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ais

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultFeedTimeout bounds a single feed fetch.
	DefaultFeedTimeout = 30 * time.Second

	// maxFeedResponseSize caps the feed body read (64 MB). A feed of every
	// vessel in a theater is large; a bigger body than this is a fault.
	maxFeedResponseSize = 64 * 1024 * 1024
)

// PERFORMANCE: shared pooled client for feed fetches. Connection reuse
// matters when the feed is polled.
var feedHTTPClient = &http.Client{
	Timeout: DefaultFeedTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// FEED CLIENT
// =============================================================================

// FeedClient fetches vessel records from the AIS feed endpoint. The feed
// responds with a bare JSON array of vessel records.
type FeedClient struct {
	endpoint string
	client   *http.Client
}

// NewFeedClient creates a feed client for the given endpoint URL.
func NewFeedClient(endpoint string) *FeedClient {
	return &FeedClient{
		endpoint: endpoint,
		client:   feedHTTPClient,
	}
}

// Fetch retrieves the current vessel set.
func (c *FeedClient) Fetch(ctx context.Context) ([]Vessel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}

	var vessels []Vessel
	if err := json.Unmarshal(body, &vessels); err != nil {
		return nil, fmt.Errorf("failed to parse feed response: %w", err)
	}
	return vessels, nil
}

// FetchOrEmpty retrieves the current vessel set, degrading to an empty set on
// any failure. The map starts empty rather than refusing to start.
func (c *FeedClient) FetchOrEmpty(ctx context.Context) []Vessel {
	vessels, err := c.Fetch(ctx)
	if err != nil {
		log.Printf("ais: feed fetch failed, starting with empty vessel set: %v", err)
		return []Vessel{}
	}
	return vessels
}

// LoadFeedFile parses a vessel array from a local feed file's contents.
// Used by the feed watcher when a file-based feed is configured.
func LoadFeedFile(data []byte) ([]Vessel, error) {
	var vessels []Vessel
	if err := json.Unmarshal(data, &vessels); err != nil {
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}
	return vessels, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package geocode resolves free-text place names to coordinates via an
// external geocoding endpoint.
//
// The adapter is deliberately thin: one result per query, no caching. Every
// call hits the network, which is acceptable at the human-scale call
// frequency of chat-driven zooms.
package geocode

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound indicates the geocoder returned zero candidates for the name.
var ErrNotFound = errors.New("location not found")

// ServiceError indicates a transport failure or non-success status from the
// geocoding endpoint.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("geocoding service error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("geocoding service error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TYPES
// =============================================================================

// Coordinates is a resolved map target. Wire order on the geocoding response
// is [lon, lat].
type Coordinates struct {
	Lon float64
	Lat float64
}

// Valid reports whether the coordinates are inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// candidate is one entry of the geocoding response list.
type candidate struct {
	Center []float64 `json:"center"`
}

// maxGeocodeResponseSize caps the response body read (1 MB). A one-result
// geocode answer is tiny; anything bigger is a fault.
const maxGeocodeResponseSize = 1 * 1024 * 1024

// PERFORMANCE: shared pooled client for geocoding calls.
var geocodeHTTPClient = &http.Client{
	Timeout: 15 * time.Second,
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
// CLIENT
// =============================================================================

// Client resolves place names against a geocoding endpoint.
type Client struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a geocoding client for the given endpoint URL.
//
// Calls are rate limited to 2/s with a small burst. Chat traffic never gets
// near that, but a misbehaving backend looping on zoom tool calls must not
// turn the client into a hammer.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   geocodeHTTPClient,
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
	}
}

// Resolve returns the coordinates of the best candidate for name.
// It returns ErrNotFound when the candidate list is empty and a ServiceError
// on transport or status failures.
func (c *Client) Resolve(ctx context.Context, name string) (Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Coordinates{}, &ServiceError{Message: "rate limit wait aborted", Err: err}
	}

	query := url.Values{}
	query.Set("query", name)
	query.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Coordinates{}, &ServiceError{Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Coordinates{}, &ServiceError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Coordinates{}, &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGeocodeResponseSize))
	if err != nil {
		return Coordinates{}, &ServiceError{Message: "failed to read response", Err: err}
	}

	candidates, err := parseCandidates(body)
	if err != nil {
		return Coordinates{}, &ServiceError{Message: "failed to parse response", Err: err}
	}
	if len(candidates) == 0 {
		return Coordinates{}, ErrNotFound
	}

	center := candidates[0].Center
	if len(center) < 2 {
		return Coordinates{}, &ServiceError{Message: "candidate has no usable center"}
	}
	return Coordinates{Lon: center[0], Lat: center[1]}, nil
}

// parseCandidates accepts both response shapes seen in the wild: a bare
// candidate array, or an object wrapping the array in a "features" field.
func parseCandidates(body []byte) ([]candidate, error) {
	var list []candidate
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Features []candidate `json:"features"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Features, nil
}

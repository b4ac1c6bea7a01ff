// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package agent drives conversation turns against the AMIS agent backend:
// it opens streaming requests, folds stream events into the transcript, and
// dispatches the client-side tools the backend asks for.
package agent

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeranaias/amis-tui/internal/mapview"
	"github.com/jeranaias/amis-tui/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// Request is the body of one backend turn request.
//
// ImageDescription and ToolResult serialize as explicit nulls when absent;
// the backend distinguishes "no tool ran" from "tool ran and returned
// nothing" by that field-level presence.
type Request struct {
	Message          string               `json:"message"`
	History          []model.HistoryEntry `json:"history"`
	ImageDescription *string              `json:"image_description"`
	ToolResult       *mapview.Summary     `json:"tool_result"`
}

// =============================================================================
// HTTP CLIENT
// =============================================================================

// PERFORMANCE: shared client for streaming turn requests. No client-level
// timeout: a turn stream stays open for as long as the model generates, so
// lifetime control belongs to the request context.
var streamingHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Client sends turn requests to the agent backend.
type Client struct {
	endpoint string
	client   *http.Client
}

// NewClient creates a backend client for the given chat endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		client:   streamingHTTPClient,
	}
}

// Send posts one turn request and returns the open response body stream.
// The caller owns the returned reader and must close it. Cancellation of ctx
// aborts both the request and subsequent body reads.
func (c *Client) Send(ctx context.Context, req Request) (io.ReadCloser, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

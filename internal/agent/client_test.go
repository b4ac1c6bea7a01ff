// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/amis-tui/internal/model"
)

func TestSendPostsExplicitNulls(t *testing.T) {
	var captured map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"type":"text","content":"ok"}` + "\n"))
	}))
	defer server.Close()

	body, err := NewClient(server.URL).Send(context.Background(), Request{
		Message: "hello",
		History: []model.HistoryEntry{{Role: model.RoleUser, Content: "earlier"}},
	})
	require.NoError(t, err)
	defer body.Close()

	// Absent tool fields must be serialized as literal nulls, not omitted.
	require.Contains(t, captured, "image_description")
	assert.Equal(t, "null", string(captured["image_description"]))
	require.Contains(t, captured, "tool_result")
	assert.Equal(t, "null", string(captured["tool_result"]))
	assert.Equal(t, `"hello"`, string(captured["message"]))

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ok"`)
}

func TestSendNonSuccessStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Send(context.Background(), Request{Message: "hi"})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestSendTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewClient(server.URL).Send(context.Background(), Request{Message: "hi"})
	assert.Error(t, err)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the chat transcript and the
// conversation history sent to the agent backend.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single entry in the displayed transcript.
//
// A message is either settled (final content) or pending: the assistant
// message for the turn currently in flight. Pending status is carried by the
// conversation's stored pending ID, not by the message content, so no content
// string is ever ambiguous with a loading state.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content is displayed verbatim. While the turn is streaming it holds the
	// partial accumulation; after settle it holds the final text.
	Content string `json:"content"`

	// IsError marks an assistant message that settled with an error line
	// instead of model output. Display-only.
	IsError bool `json:"is_error,omitempty"`
}

// NewUserMessage creates a settled user message.
func NewUserMessage(content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage creates an empty assistant message for a turn that is
// about to stream. The caller records its ID as the pending ID.
func NewAssistantMessage() *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// =============================================================================
// HISTORY ENTRY
// =============================================================================

// HistoryEntry is one completed turn half in the wire history sent with each
// backend request. Only settled user/assistant text lives here; placeholders,
// partial streams, and turns that ended in a tool call never do.
type HistoryEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

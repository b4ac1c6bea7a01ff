// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxMessages is the maximum number of messages to keep in the displayed
// transcript. When exceeded, old messages are pruned to prevent unbounded
// memory growth. The wire history is not pruned; it only grows by settled
// turns and stays consistent with what the backend has already seen.
const MaxMessages = 1000

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the displayed transcript, the wire history, and the
// identity of the in-flight assistant message.
//
// The two lists serve different masters: Messages is what the user sees
// (including pending placeholders and error lines), History is what the
// backend receives (settled turns only). They are updated together only at
// the moments the turn state machine allows.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Messages is the displayed transcript, in arrival order.
	Messages []*Message `json:"messages"`

	// History is the conversation history for backend requests.
	History []HistoryEntry `json:"history"`

	// pendingID identifies the assistant message owned by the in-flight turn,
	// or "" when the conversation is idle.
	pendingID string
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        newConversationID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Messages:  make([]*Message, 0),
		History:   make([]HistoryEntry, 0),
	}
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// BeginTurn appends the user's message and an empty pending assistant message,
// and records the assistant message as pending. It returns the pending ID.
func (c *Conversation) BeginTurn(userContent string) string {
	c.append(NewUserMessage(userContent))
	pending := NewAssistantMessage()
	c.append(pending)
	c.pendingID = pending.ID
	return pending.ID
}

// ReplacePending swaps the pending assistant message for a fresh one, keeping
// the turn in flight. Used when a tool resolves and the follow-up request
// starts a new assistant message: the old placeholder is removed so its
// discarded partial content cannot leak into the transcript.
func (c *Conversation) ReplacePending() string {
	c.removePending()
	pending := NewAssistantMessage()
	c.append(pending)
	c.pendingID = pending.ID
	return pending.ID
}

// SetPendingContent updates the displayed content of the pending message.
// Calls with a stale ID (from a turn that already settled) are ignored.
func (c *Conversation) SetPendingContent(id, content string) {
	if id == "" || id != c.pendingID {
		return
	}
	if msg := c.messageByID(id); msg != nil {
		msg.Content = content
	}
}

// SettleTurn finalizes the pending assistant message with the accumulated
// text and commits the completed turn to the wire history. The assistant
// content is trimmed before commit; the user content was committed verbatim
// at submit time and is recovered from the transcript here. An empty
// accumulator (a stream that ended without any text events) commits the user
// entry alone: empty assistant entries must never ride along in later
// requests.
func (c *Conversation) SettleTurn(id, assistantContent string) {
	if id == "" || id != c.pendingID {
		return
	}
	trimmed := strings.TrimSpace(assistantContent)

	msg := c.messageByID(id)
	if msg != nil {
		msg.Content = trimmed
	}

	if user := c.lastUserMessage(); user != nil {
		c.History = append(c.History, HistoryEntry{Role: RoleUser, Content: user.Content})
		if trimmed != "" {
			c.History = append(c.History, HistoryEntry{Role: RoleAssistant, Content: trimmed})
		}
	}

	c.pendingID = ""
	c.UpdatedAt = time.Now()
}

// AbortTurn settles the pending assistant message with literal content and
// no history commit. Used for tool outcomes that are specific user-readable
// messages rather than generic errors.
func (c *Conversation) AbortTurn(id, content string) {
	if id == "" || id != c.pendingID {
		return
	}
	if msg := c.messageByID(id); msg != nil {
		msg.Content = content
		msg.IsError = true
	}
	c.pendingID = ""
	c.UpdatedAt = time.Now()
}

// FailTurn settles the pending assistant message with an error line. Nothing
// is committed to the wire history: a failed turn never happened as far as
// the backend is concerned.
func (c *Conversation) FailTurn(id, errMessage string) {
	if id == "" || id != c.pendingID {
		return
	}
	if msg := c.messageByID(id); msg != nil {
		msg.Content = "Error: " + errMessage
		msg.IsError = true
	}
	c.pendingID = ""
	c.UpdatedAt = time.Now()
}

// PendingID returns the ID of the in-flight assistant message, or "".
func (c *Conversation) PendingID() string {
	return c.pendingID
}

// IsPending reports whether the given message is the in-flight placeholder.
func (c *Conversation) IsPending(id string) bool {
	return id != "" && id == c.pendingID
}

// InFlight reports whether a turn is currently being processed.
func (c *Conversation) InFlight() bool {
	return c.pendingID != ""
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// GetLastMessage returns the most recent message, or nil if empty.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// MessageCount returns the number of displayed messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// HistorySnapshot returns a copy of the wire history. The copy keeps the
// in-flight request body immune to later settles.
func (c *Conversation) HistorySnapshot() []HistoryEntry {
	out := make([]HistoryEntry, len(c.History))
	copy(out, c.History)
	return out
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Conversation) append(msg *Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
	c.pruneOldMessages()
}

func (c *Conversation) messageByID(id string) *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].ID == id {
			return c.Messages[i]
		}
	}
	return nil
}

func (c *Conversation) lastUserMessage() *Message {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i]
		}
	}
	return nil
}

func (c *Conversation) removePending() {
	if c.pendingID == "" {
		return
	}
	for i, msg := range c.Messages {
		if msg.ID == c.pendingID {
			c.Messages = append(c.Messages[:i], c.Messages[i+1:]...)
			break
		}
	}
	c.pendingID = ""
}

// newConversationID creates a unique conversation ID.
func newConversationID() string {
	return "conv_" + uuid.NewString()
}

// pruneOldMessages drops the oldest transcript entries past MaxMessages.
// The pending message is never pruned.
func (c *Conversation) pruneOldMessages() {
	if len(c.Messages) <= MaxMessages {
		return
	}
	drop := len(c.Messages) - MaxMessages
	kept := make([]*Message, 0, MaxMessages)
	for i, msg := range c.Messages {
		if i < drop && msg.ID != c.pendingID {
			continue
		}
		kept = append(kept, msg)
	}
	c.Messages = kept
}

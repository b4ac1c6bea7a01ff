// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestBeginTurnAppendsUserAndPlaceholder(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("show me Norfolk")

	if conv.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", conv.MessageCount())
	}
	if conv.Messages[0].Role != RoleUser || conv.Messages[0].Content != "show me Norfolk" {
		t.Errorf("unexpected user message: %+v", conv.Messages[0])
	}
	if conv.Messages[1].ID != id {
		t.Errorf("pending message ID mismatch")
	}
	if !conv.InFlight() || !conv.IsPending(id) {
		t.Errorf("expected turn in flight with pending id %s", id)
	}
	if len(conv.History) != 0 {
		t.Errorf("history must not grow until the turn settles")
	}
}

func TestSettleTurnCommitsTrimmedHistory(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("hello")
	conv.SetPendingContent(id, "Hi ")
	conv.SettleTurn(id, "Hi there. \n")

	if conv.InFlight() {
		t.Fatal("turn should be settled")
	}
	if got := conv.Messages[1].Content; got != "Hi there." {
		t.Errorf("assistant content not trimmed: %q", got)
	}
	if len(conv.History) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(conv.History))
	}
	if conv.History[0] != (HistoryEntry{Role: RoleUser, Content: "hello"}) {
		t.Errorf("unexpected user history entry: %+v", conv.History[0])
	}
	if conv.History[1] != (HistoryEntry{Role: RoleAssistant, Content: "Hi there."}) {
		t.Errorf("unexpected assistant history entry: %+v", conv.History[1])
	}
}

func TestSettleTurnEmptyAccumulatorCommitsUserOnly(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("hello")
	conv.SettleTurn(id, "  \n")

	if conv.InFlight() {
		t.Fatal("turn should be settled")
	}
	if len(conv.History) != 1 {
		t.Fatalf("expected only the user entry, got %d entries: %+v", len(conv.History), conv.History)
	}
	if conv.History[0] != (HistoryEntry{Role: RoleUser, Content: "hello"}) {
		t.Errorf("unexpected history entry: %+v", conv.History[0])
	}
	for _, entry := range conv.History {
		if entry.Role == RoleAssistant && entry.Content == "" {
			t.Error("empty assistant entry committed to history")
		}
	}
}

func TestFailTurnLeavesHistoryUntouched(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("hello")
	conv.FailTurn(id, "backend unreachable")

	if conv.InFlight() {
		t.Fatal("turn should be settled")
	}
	msg := conv.Messages[1]
	if msg.Content != "Error: backend unreachable" || !msg.IsError {
		t.Errorf("unexpected error message: %+v", msg)
	}
	if len(conv.History) != 0 {
		t.Errorf("failed turn must not reach history, got %d entries", len(conv.History))
	}
}

func TestReplacePendingDiscardsPlaceholder(t *testing.T) {
	conv := NewConversation()
	first := conv.BeginTurn("zoom somewhere")
	conv.SetPendingContent(first, "executing zoom...")

	second := conv.ReplacePending()
	if second == first {
		t.Fatal("replacement must mint a fresh assistant message ID")
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("expected placeholder swap to keep 2 messages, got %d", conv.MessageCount())
	}
	for _, msg := range conv.Messages {
		if msg.Content == "executing zoom..." {
			t.Error("discarded placeholder content leaked into the transcript")
		}
	}
	if !conv.IsPending(second) {
		t.Error("second assistant message should be pending")
	}
}

func TestStaleIDUpdatesIgnored(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("hello")
	conv.SettleTurn(id, "done")

	// The turn settled; anything still holding the old ID must be a no-op.
	conv.SetPendingContent(id, "late token")
	conv.FailTurn(id, "late failure")

	if got := conv.Messages[1].Content; got != "done" {
		t.Errorf("stale update mutated settled message: %q", got)
	}
	if len(conv.History) != 2 {
		t.Errorf("stale update mutated history")
	}
}

func TestHistorySnapshotIsIndependent(t *testing.T) {
	conv := NewConversation()
	id := conv.BeginTurn("one")
	conv.SettleTurn(id, "first")

	snap := conv.HistorySnapshot()
	id2 := conv.BeginTurn("two")
	conv.SettleTurn(id2, "second")

	if len(snap) != 2 {
		t.Fatalf("snapshot grew with the live history: %d entries", len(snap))
	}
}

func TestPreviewTruncatesOnRunes(t *testing.T) {
	msg := NewUserMessage(strings.Repeat("é", 10))
	if got := msg.Preview(5); len([]rune(got)) != 5 {
		t.Errorf("preview length %d runes, want 5", len([]rune(got)))
	}
	short := NewUserMessage("hi")
	if short.Preview(10) != "hi" {
		t.Errorf("short content should pass through untouched")
	}
}

func TestPruneKeepsPendingMessage(t *testing.T) {
	conv := NewConversation()
	for i := 0; i < MaxMessages/2; i++ {
		id := conv.BeginTurn("ping")
		conv.SettleTurn(id, "pong")
	}
	pending := conv.BeginTurn("last one")
	for i := 0; i < 10; i++ {
		conv.append(NewUserMessage("filler"))
	}

	if conv.MessageCount() > MaxMessages {
		t.Errorf("prune did not bound transcript: %d", conv.MessageCount())
	}
	if conv.messageByID(pending) == nil {
		t.Error("prune dropped the pending message")
	}
}

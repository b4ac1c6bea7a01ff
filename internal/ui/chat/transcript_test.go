// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/jeranaias/amis-tui/internal/model"
	"github.com/jeranaias/amis-tui/internal/ui/styles"
)

func plainTranscript() *Transcript {
	// Markdown off keeps assertions independent of glamour's styling.
	return NewTranscript(styles.Dark(), false)
}

func TestTranscriptEmptyShowsHint(t *testing.T) {
	out := plainTranscript().Render(nil, "", "")
	if !strings.Contains(out, "Enter sends") {
		t.Errorf("empty transcript missing hint: %q", out)
	}
}

func TestTranscriptRendersRoles(t *testing.T) {
	asst := model.NewAssistantMessage()
	asst.Content = "Moving the map now."
	msgs := []model.Message{
		*model.NewUserMessage("show me Norfolk"),
		*asst,
	}
	out := plainTranscript().Render(msgs, "", "")

	if !strings.Contains(out, "show me Norfolk") {
		t.Error("user content missing")
	}
	if !strings.Contains(out, "Moving the map now.") {
		t.Error("assistant content missing")
	}
	userIdx := strings.Index(out, "show me Norfolk")
	asstIdx := strings.Index(out, "Moving the map now.")
	if userIdx > asstIdx {
		t.Error("messages out of order")
	}
}

func TestTranscriptPendingShowsSpinner(t *testing.T) {
	pending := model.NewAssistantMessage()
	pending.Content = "thinking"
	msgs := []model.Message{*pending}

	out := plainTranscript().Render(msgs, pending.ID, "|")
	if !strings.Contains(out, "thinking |") {
		t.Errorf("pending message missing spinner frame: %q", out)
	}
}

func TestTranscriptPendingEmptyContentShowsOnlySpinner(t *testing.T) {
	pending := model.NewAssistantMessage()
	msgs := []model.Message{*pending}

	out := plainTranscript().Render(msgs, pending.ID, "/")
	if !strings.Contains(out, "/") {
		t.Errorf("expected bare spinner frame, got %q", out)
	}
}

func TestTranscriptPreservesWhitespaceVerbatim(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.Content = "line one\n  indented\n\nline three"
	msgs := []model.Message{*msg}

	out := plainTranscript().Render(msgs, "", "")
	if !strings.Contains(out, "  indented") {
		t.Errorf("indentation not preserved: %q", out)
	}
}

func TestTranscriptErrorMessage(t *testing.T) {
	msg := model.NewAssistantMessage()
	msg.Content = `Could not find coordinates for location: "Atlantis".`
	msg.IsError = true
	msgs := []model.Message{*msg}

	out := plainTranscript().Render(msgs, "", "")
	if !strings.Contains(out, `"Atlantis"`) {
		t.Errorf("error content missing: %q", out)
	}
}

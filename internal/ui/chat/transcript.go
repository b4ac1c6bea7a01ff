// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/amis-tui/internal/model"
	"github.com/jeranaias/amis-tui/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

const (
	userGlyph      = "$"
	assistantGlyph = ">"
)

// Transcript renders the conversation messages into styled terminal text.
// It is a pure renderer: all state comes in through Render's arguments.
type Transcript struct {
	theme    styles.Theme
	markdown bool
	width    int
	renderer *glamour.TermRenderer
}

// NewTranscript creates a transcript renderer. Markdown rendering applies
// only to settled assistant messages; streaming text is shown verbatim so
// partial markup never flickers through half-rendered.
func NewTranscript(theme styles.Theme, markdown bool) *Transcript {
	return &Transcript{
		theme:    theme,
		markdown: markdown,
		width:    80,
	}
}

// SetWidth updates the wrap width. The glamour renderer is rebuilt lazily on
// the next markdown render.
func (t *Transcript) SetWidth(width int) {
	if width <= 0 || width == t.width {
		return
	}
	t.width = width
	t.renderer = nil
}

// Render produces the full transcript view. pendingID identifies the
// placeholder assistant message, which gets the spinner frame appended while
// its content is still arriving.
func (t *Transcript) Render(messages []model.Message, pendingID, spinnerFrame string) string {
	if len(messages) == 0 {
		return t.theme.PendingText.Render("Ask about the map, or where to go. Enter sends, Esc cancels.")
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.renderMessage(msg, msg.ID == pendingID, spinnerFrame))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Transcript) renderMessage(msg model.Message, pending bool, spinnerFrame string) string {
	switch {
	case msg.Role == model.RoleUser:
		return t.renderUser(msg)
	case pending:
		return t.renderPending(msg, spinnerFrame)
	case msg.IsError:
		return t.theme.AssistantPrompt.Render(assistantGlyph) + " " +
			t.theme.ErrorText.Render(msg.Content)
	default:
		return t.renderAssistant(msg)
	}
}

func (t *Transcript) renderUser(msg model.Message) string {
	return t.theme.UserPrompt.Render(userGlyph) + " " +
		t.theme.UserText.Render(msg.Content)
}

// renderPending shows the in-progress assistant message: streamed text so far
// (verbatim, whitespace preserved) with the spinner frame trailing.
func (t *Transcript) renderPending(msg model.Message, spinnerFrame string) string {
	content := msg.Content
	if spinnerFrame != "" {
		if content == "" {
			content = spinnerFrame
		} else {
			content = content + " " + spinnerFrame
		}
	}
	return t.theme.AssistantPrompt.Render(assistantGlyph) + " " +
		t.theme.PendingText.Render(content)
}

func (t *Transcript) renderAssistant(msg model.Message) string {
	prompt := t.theme.AssistantPrompt.Render(assistantGlyph) + " "
	if t.markdown {
		if rendered, ok := t.renderMarkdown(msg.Content); ok {
			return prompt + "\n" + rendered
		}
	}
	return prompt + t.theme.AssistantText.Render(msg.Content)
}

// renderMarkdown renders settled assistant content through glamour. Any
// renderer failure falls back to plain text rather than losing the message.
func (t *Transcript) renderMarkdown(content string) (string, bool) {
	if t.renderer == nil {
		wrap := t.width - 2
		if wrap < 20 {
			wrap = 20
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return "", false
		}
		t.renderer = r
	}
	out, err := t.renderer.Render(content)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(out, "\n"), true
}

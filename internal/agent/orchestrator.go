// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/amis-tui/internal/ais"
	"github.com/jeranaias/amis-tui/internal/geocode"
	"github.com/jeranaias/amis-tui/internal/mapview"
	"github.com/jeranaias/amis-tui/internal/model"
	"github.com/jeranaias/amis-tui/internal/stream"
)

// =============================================================================
// TOOL NAMES
// =============================================================================

const (
	// ToolZoom asks the client to geocode a place name and fly the map there.
	ToolZoom = "zoom"

	// ToolMapSummary asks the client to summarize the current viewport.
	ToolMapSummary = "get_map_summary"
)

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Backend opens one streaming turn request. Implemented by Client.
type Backend interface {
	Send(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Geocoder resolves a place name to coordinates. Implemented by
// geocode.Client.
type Geocoder interface {
	Resolve(ctx context.Context, name string) (geocode.Coordinates, error)
}

// MapSurface is the capability surface the orchestrator dispatches map tools
// against. Implemented by mapview.Surface.
type MapSurface interface {
	FlyTo(ctx context.Context, target ais.Position, zoom float64) error
	Summarize(ctx context.Context) mapview.Summary
	DescribeScene(ctx context.Context) (string, error)
}

// =============================================================================
// TURN STATE
// =============================================================================

// State is the tagged per-turn state of the orchestrator.
type State int

const (
	// StateIdle: no request in flight.
	StateIdle State = iota

	// StateStreaming: a backend request is open and events are being folded
	// into the pending assistant message.
	StateStreaming

	// StateToolDispatch: a tool_call arrived and its handler is running; no
	// follow-up request has been opened yet.
	StateToolDispatch

	// StateSettled: terminal per-turn state; the turn's text is committed.
	StateSettled
)

// String returns a label for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateToolDispatch:
		return "tool_dispatch"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Turn owns the per-request context of one conversation turn: the pending
// message identity, the text accumulator, and the tagged state. Everything a
// turn mutates lives here rather than in captured closure variables, so a
// settled turn cannot be touched by stragglers.
type Turn struct {
	ID        string
	PendingID string
	State     State

	acc strings.Builder
}

func newTurn() *Turn {
	return &Turn{ID: "turn_" + uuid.NewString(), State: StateStreaming}
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator is the conversation state machine. It owns the conversation,
// enforces the single-in-flight invariant, and runs each turn from submit to
// settle: stream, dispatch tools, re-enter the backend with results.
type Orchestrator struct {
	backend  Backend
	geocoder Geocoder
	surface  MapSurface // nil when no map is attached

	mu   sync.Mutex
	conv *model.Conversation
	turn *Turn // nil when idle

	// onChange is invoked after every externally visible mutation. The TUI
	// uses it to trigger a repaint. Never called with the mutex held.
	onChange func()
}

// NewOrchestrator creates an orchestrator over the given collaborators.
// surface may be nil; map tools then fail inline without a round-trip.
func NewOrchestrator(backend Backend, geocoder Geocoder, surface MapSurface) *Orchestrator {
	return &Orchestrator{
		backend:  backend,
		geocoder: geocoder,
		surface:  surface,
		conv:     model.NewConversation(),
		onChange: func() {},
	}
}

// SetOnChange registers the change notification callback.
func (o *Orchestrator) SetOnChange(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// State returns the current turn state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.turn == nil {
		return StateIdle
	}
	return o.turn.State
}

// Messages returns a snapshot of the transcript for rendering.
func (o *Orchestrator) Messages() []model.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]model.Message, 0, len(o.conv.Messages))
	for _, m := range o.conv.Messages {
		out = append(out, *m)
	}
	return out
}

// PendingID returns the in-flight assistant message ID, or "".
func (o *Orchestrator) PendingID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.PendingID()
}

// HistoryLen returns the number of committed history entries.
func (o *Orchestrator) HistoryLen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.conv.History)
}

// Submit runs one conversation turn to completion. Blank input and
// submissions while a turn is in flight are no-ops. The context is honored
// at every await boundary: the request, each chunk read, tool execution, and
// the camera settle wait.
//
// Submit blocks until the turn settles; callers run it on its own goroutine.
func (o *Orchestrator) Submit(ctx context.Context, input string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return
	}

	o.mu.Lock()
	if o.turn != nil {
		// Single-in-flight invariant.
		o.mu.Unlock()
		return
	}
	turn := newTurn()
	o.turn = turn
	turn.PendingID = o.conv.BeginTurn(trimmed)
	o.mu.Unlock()
	o.notify()

	req := Request{Message: trimmed, History: o.historySnapshot()}
	o.runTurn(ctx, turn, req)
}

// notify fires the change callback outside the lock.
func (o *Orchestrator) notify() {
	o.mu.Lock()
	fn := o.onChange
	o.mu.Unlock()
	fn()
}

func (o *Orchestrator) historySnapshot() []model.HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conv.HistorySnapshot()
}

// =============================================================================
// TURN EXECUTION
// =============================================================================

// runTurn drives the request/stream/tool loop until the turn settles.
func (o *Orchestrator) runTurn(ctx context.Context, turn *Turn, req Request) {
	for {
		body, err := o.backend.Send(ctx, req)
		if err != nil {
			o.fail(turn, err.Error())
			return
		}

		toolCall, failMsg := o.consumeStream(ctx, turn, body)
		body.Close()

		if failMsg != "" {
			o.fail(turn, failMsg)
			return
		}

		if toolCall == nil {
			// Stream ended with no pending tool call: settle.
			o.settle(turn)
			return
		}

		followup, ok := o.dispatchTool(ctx, turn, toolCall)
		if !ok {
			// Tool handler already wrote its inline outcome; no round-trip.
			return
		}

		// Fresh assistant message for the post-tool stream; the tool-call
		// turn itself never reaches history, so the history snapshot is
		// unchanged.
		o.mu.Lock()
		turn.PendingID = o.conv.ReplacePending()
		turn.State = StateStreaming
		turn.acc.Reset()
		o.mu.Unlock()
		o.notify()

		req = followup
	}
}

// consumeStream folds stream events into the turn until the stream ends, a
// tool call arrives, or an error event fires. It returns the tool call (if
// any) and a failure message (if the turn must fail).
func (o *Orchestrator) consumeStream(ctx context.Context, turn *Turn, body io.Reader) (*stream.Event, string) {
	decoder := stream.NewDecoder(body)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err.Error()
		}

		ev, err := decoder.Next()
		if err == io.EOF {
			return nil, ""
		}
		if err != nil {
			return nil, err.Error()
		}

		switch ev.Type {
		case stream.EventText:
			o.mu.Lock()
			turn.acc.WriteString(ev.Content)
			o.conv.SetPendingContent(turn.PendingID, turn.acc.String())
			o.mu.Unlock()
			o.notify()

		case stream.EventError:
			// Backend-reported errors and decoder faults arrive the same
			// way; both are terminal for the turn.
			return nil, ev.Content

		case stream.EventToolCall:
			toolCall := ev
			return &toolCall, ""
		}
	}
}

// settle commits the accumulated text and returns the orchestrator to idle.
func (o *Orchestrator) settle(turn *Turn) {
	o.mu.Lock()
	turn.State = StateSettled
	o.conv.SettleTurn(turn.PendingID, turn.acc.String())
	o.turn = nil
	o.mu.Unlock()
	o.notify()
}

// fail writes the error into the pending message and returns to idle.
// Failed turns never contribute history entries.
func (o *Orchestrator) fail(turn *Turn, message string) {
	o.mu.Lock()
	turn.State = StateSettled
	o.conv.FailTurn(turn.PendingID, message)
	o.turn = nil
	o.mu.Unlock()
	o.notify()
	log.Printf("agent: turn %s failed: %s", turn.ID, message)
}

// finishInline settles the turn with literal message content (no "Error:"
// prefix) and no round-trip. Used for the not-found zoom outcome, which is a
// specific user-readable message rather than a generic error.
func (o *Orchestrator) finishInline(turn *Turn, content string) {
	o.mu.Lock()
	turn.State = StateSettled
	o.conv.AbortTurn(turn.PendingID, content)
	o.turn = nil
	o.mu.Unlock()
	o.notify()
}

// =============================================================================
// TOOL DISPATCH
// =============================================================================

// dispatchTool runs the requested tool. The accumulated pre-call text has
// already been discarded by the caller's contract: a turn that calls a tool
// never contributes its pre-call text to history.
//
// It returns the follow-up request and ok=true when the turn re-enters
// streaming; ok=false when the tool outcome was written inline and the turn
// is over.
func (o *Orchestrator) dispatchTool(ctx context.Context, turn *Turn, call *stream.Event) (Request, bool) {
	o.mu.Lock()
	turn.State = StateToolDispatch
	turn.acc.Reset()
	o.conv.SetPendingContent(turn.PendingID, "executing "+call.ToolName+"...")
	history := o.conv.HistorySnapshot()
	o.mu.Unlock()
	o.notify()

	switch call.ToolName {
	case ToolZoom:
		return o.dispatchZoom(ctx, turn, call, history)

	case ToolMapSummary:
		return o.dispatchSummary(ctx, turn, history)

	default:
		o.fail(turn, fmt.Sprintf("unknown tool %q", call.ToolName))
		return Request{}, false
	}
}

// dispatchZoom geocodes the location, flies the camera, and builds the
// follow-up request carrying the scene description.
func (o *Orchestrator) dispatchZoom(ctx context.Context, turn *Turn, call *stream.Event, history []model.HistoryEntry) (Request, bool) {
	name, zoom, err := parseZoomArgs(call.Args)
	if err != nil {
		// Malformed arguments from the backend: recovered locally, surfaced
		// inline, no round-trip.
		o.fail(turn, err.Error())
		return Request{}, false
	}

	if o.surface == nil {
		o.fail(turn, "map is not available")
		return Request{}, false
	}

	coords, err := o.geocoder.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			// No flyTo, no round-trip: a specific, user-readable outcome.
			o.finishInline(turn, fmt.Sprintf("Could not find coordinates for location: %q.", name))
			return Request{}, false
		}
		o.fail(turn, err.Error())
		return Request{}, false
	}

	// From here on, failures become the image_description so the backend can
	// explain the outcome in natural language.
	description := o.zoomAndDescribe(ctx, coords, zoom)

	return Request{
		Message:          fmt.Sprintf("zoom tool result for %q", name),
		History:          history,
		ImageDescription: &description,
	}, true
}

// zoomAndDescribe performs the camera movement and produces the scene
// description, degrading to failure text instead of erroring.
func (o *Orchestrator) zoomAndDescribe(ctx context.Context, coords geocode.Coordinates, zoom int) string {
	target := ais.Position{Lat: coords.Lat, Lon: coords.Lon}
	if err := o.surface.FlyTo(ctx, target, float64(zoom)); err != nil {
		return fmt.Sprintf("Failed to move the map: %v", err)
	}
	description, err := o.surface.DescribeScene(ctx)
	if err != nil {
		return fmt.Sprintf("Map moved, but the view could not be described: %v", err)
	}
	return description
}

// dispatchSummary reads the viewport summary and builds the follow-up
// request. A degraded summary (handler failure captured in its error field)
// still round-trips.
func (o *Orchestrator) dispatchSummary(ctx context.Context, turn *Turn, history []model.HistoryEntry) (Request, bool) {
	if o.surface == nil {
		o.fail(turn, "map is not available")
		return Request{}, false
	}

	summary := o.surface.Summarize(ctx)
	return Request{
		Message:    "map summary tool result",
		History:    history,
		ToolResult: &summary,
	}, true
}

// parseZoomArgs validates the zoom tool arguments: both must be present and
// zoom_level must parse as an integer.
func parseZoomArgs(args map[string]string) (string, int, error) {
	name, ok := args["location_name"]
	if !ok || strings.TrimSpace(name) == "" {
		return "", 0, errors.New("zoom tool call missing location_name")
	}
	rawZoom, ok := args["zoom_level"]
	if !ok {
		return "", 0, errors.New("zoom tool call missing zoom_level")
	}
	zoom, err := strconv.Atoi(strings.TrimSpace(rawZoom))
	if err != nil {
		return "", 0, fmt.Errorf("zoom tool call has non-integer zoom_level %q", rawZoom)
	}
	return name, zoom, nil
}

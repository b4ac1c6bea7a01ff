// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream decodes the line-delimited JSON event stream produced by the
// AMIS agent backend.
//
// The backend responds to each turn with a byte stream of newline-delimited
// JSON objects. Chunk boundaries on the wire are arbitrary: a single read may
// contain half a frame, several frames, or bytes from two adjacent frames.
// The Decoder reassembles frames from chunks and yields typed events in the
// exact order their delimiters were observed.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
)

// =============================================================================
// FRAME CONSTANTS
// =============================================================================

// MaxFrameSize is the maximum allowed size for a single undelimited frame.
// A stream that exceeds this without producing a newline is treated as
// malformed rather than buffered without bound.
const MaxFrameSize = 64 * 1024

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType discriminates the decoded event union.
type EventType int

const (
	// EventText carries an incremental assistant text fragment.
	EventText EventType = iota

	// EventToolCall carries a request for the client to execute a tool.
	EventToolCall

	// EventError carries a backend-reported or decoder-synthesized error.
	EventError
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventText:
		return "text"
	case EventToolCall:
		return "tool_call"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a single decoded frame from the agent stream.
type Event struct {
	Type EventType

	// Content holds the text fragment for EventText, or the message for
	// EventError.
	Content string

	// ToolName and Args are populated for EventToolCall only.
	ToolName string
	Args     map[string]string
}

// =============================================================================
// PARSE ERROR
// =============================================================================

// ParseError reports a frame that could not be decoded. Framing cannot be
// resynchronized after a garbled frame, so a ParseError is fatal to the
// stream it occurred on.
type ParseError struct {
	Line string // the offending segment, truncated for display
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed stream frame: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// WIRE FRAME
// =============================================================================

// frame is the raw wire shape of a single line. Pointer fields distinguish
// absent keys from present-but-empty values so that a known type with a
// missing required field fails closed instead of decoding silently.
type frame struct {
	Type     *string           `json:"type"`
	Content  *string           `json:"content"`
	ToolName *string           `json:"tool_name"`
	Args     map[string]string `json:"args"`
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a raw byte stream into an ordered sequence of Events.
//
// Decoding is fail-fast: the first malformed frame yields a synthetic
// EventError and halts the decoder, since partial frames cannot be safely
// resynchronized. Frames with an unrecognized type value are skipped (logged)
// for forward compatibility.
type Decoder struct {
	r       io.Reader
	buf     []byte
	scratch []byte
	eof     bool
	halted  bool
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:       r,
		scratch: make([]byte, 4096),
	}
}

// Next returns the next event in arrival order. It returns io.EOF when the
// stream is exhausted, and a read error if the underlying reader fails.
//
// A malformed frame is reported as a synthetic EventError (not as an error
// return); every call after that returns io.EOF.
func (d *Decoder) Next() (Event, error) {
	for {
		if d.halted {
			return Event{}, io.EOF
		}

		// Drain complete frames already buffered.
		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			segment := d.buf[:i]
			d.buf = d.buf[i+1:]
			ev, ok, err := d.decodeSegment(segment)
			if err != nil {
				return d.halt(err), nil
			}
			if ok {
				return ev, nil
			}
			continue
		}

		// Guard against a frame growing without a delimiter.
		if len(d.buf) > MaxFrameSize {
			return d.halt(&ParseError{
				Line: previewSegment(d.buf),
				Err:  fmt.Errorf("frame exceeds %d bytes without delimiter", MaxFrameSize),
			}), nil
		}

		if d.eof {
			// Flush any trailing undelimited content exactly once.
			if len(d.buf) > 0 {
				segment := d.buf
				d.buf = nil
				ev, ok, err := d.decodeSegment(segment)
				if err != nil {
					return d.halt(err), nil
				}
				if ok {
					return ev, nil
				}
				continue
			}
			return Event{}, io.EOF
		}

		// Pull the next chunk. Boundaries are arbitrary and may split frames.
		n, err := d.r.Read(d.scratch)
		if n > 0 {
			d.buf = append(d.buf, d.scratch[:n]...)
		}
		if err == io.EOF {
			d.eof = true
			continue
		}
		if err != nil {
			return Event{}, fmt.Errorf("stream read: %w", err)
		}
	}
}

// halt records the fatal condition and returns its synthetic error event.
func (d *Decoder) halt(err error) Event {
	d.halted = true
	return Event{Type: EventError, Content: err.Error()}
}

// decodeSegment parses one delimited segment. It returns ok=false for
// segments that produce no event (blank lines, unknown types).
func (d *Decoder) decodeSegment(segment []byte) (Event, bool, error) {
	segment = bytes.TrimSpace(segment)
	if len(segment) == 0 {
		return Event{}, false, nil
	}

	var f frame
	if err := json.Unmarshal(segment, &f); err != nil {
		return Event{}, false, &ParseError{Line: previewSegment(segment), Err: err}
	}
	if f.Type == nil {
		return Event{}, false, &ParseError{
			Line: previewSegment(segment),
			Err:  fmt.Errorf("frame missing type field"),
		}
	}

	switch *f.Type {
	case "text":
		if f.Content == nil {
			return Event{}, false, &ParseError{
				Line: previewSegment(segment),
				Err:  fmt.Errorf("text frame missing content"),
			}
		}
		return Event{Type: EventText, Content: *f.Content}, true, nil

	case "tool_call":
		if f.ToolName == nil {
			return Event{}, false, &ParseError{
				Line: previewSegment(segment),
				Err:  fmt.Errorf("tool_call frame missing tool_name"),
			}
		}
		args := f.Args
		if args == nil {
			args = map[string]string{}
		}
		return Event{Type: EventToolCall, ToolName: *f.ToolName, Args: args}, true, nil

	case "error":
		if f.Content == nil {
			return Event{}, false, &ParseError{
				Line: previewSegment(segment),
				Err:  fmt.Errorf("error frame missing content"),
			}
		}
		return Event{Type: EventError, Content: *f.Content}, true, nil

	default:
		// Unknown type values are ignored for forward compatibility.
		log.Printf("stream: ignoring unknown frame type %q", *f.Type)
		return Event{}, false, nil
	}
}

// previewSegment truncates a segment for inclusion in error messages.
func previewSegment(segment []byte) string {
	const max = 120
	if len(segment) <= max {
		return string(segment)
	}
	return string(segment[:max]) + "..."
}

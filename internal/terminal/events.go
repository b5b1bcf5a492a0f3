// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import "github.com/emadadel4/Eterminal/internal/render"

// EventKind identifies a change front ends must mirror.
type EventKind int

const (
	// EventAppend adds Event.Line to the panel.
	EventAppend EventKind = iota + 1
	// EventClear empties the panel.
	EventClear
	// EventOpen asks the front end to open Event.URL.
	EventOpen
)

func (k EventKind) String() string {
	switch k {
	case EventAppend:
		return "append"
	case EventClear:
		return "clear"
	case EventOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Event is one change to the terminal display, in the order it happened.
type Event struct {
	Kind EventKind
	Line render.Line
	URL  string
}

// Listener receives events synchronously on the session's goroutine.
type Listener func(Event)

// Recorder collects events; handy for front ends that batch a keystroke's
// worth of updates.
type Recorder struct {
	events []Event
}

// Listen is a Listener appending to the recorder.
func (r *Recorder) Listen(ev Event) { r.events = append(r.events, ev) }

// Drain returns the recorded events and resets the recorder.
func (r *Recorder) Drain() []Event {
	out := r.events
	r.events = nil
	return out
}

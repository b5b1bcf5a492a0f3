// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps the submitted command lines and the recall cursor.
//
// The cursor lives in [0, Len]. Len is the idle position: nothing is being
// recalled and the input field belongs to the user. Previous walks towards
// the oldest entry, Next walks back and finally returns to idle.
package history

import "slices"

// Saver persists the full history after each submission.
type Saver interface {
	SaveHistory(entries []string) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(entries []string) error

// SaveHistory calls f.
func (f SaverFunc) SaveHistory(entries []string) error { return f(entries) }

// Navigator is the command history with a recall cursor. It is not safe for
// concurrent use; each terminal session owns one.
type Navigator struct {
	entries []string
	cursor  int
	saver   Saver
	onError func(error)
}

// New creates a navigator seeded with entries (oldest first). saver may be nil.
func New(entries []string, saver Saver) *Navigator {
	n := &Navigator{
		entries: slices.Clone(entries),
		saver:   saver,
	}
	n.cursor = len(n.entries)
	return n
}

// OnSaveError registers a callback for persistence failures. Failures are
// never returned to the caller.
func (n *Navigator) OnSaveError(fn func(error)) {
	n.onError = fn
}

// Record appends line, persists the history and resets the cursor to idle.
// Duplicates are kept.
func (n *Navigator) Record(line string) {
	if line == "" {
		return
	}
	n.entries = append(n.entries, line)
	n.cursor = len(n.entries)

	if n.saver == nil {
		return
	}
	if err := n.saver.SaveHistory(slices.Clone(n.entries)); err != nil && n.onError != nil {
		n.onError(err)
	}
}

// Previous moves one entry back and returns it. At the oldest entry it does
// nothing and reports false.
func (n *Navigator) Previous() (string, bool) {
	if n.cursor == 0 {
		return "", false
	}
	n.cursor--
	return n.entries[n.cursor], true
}

// Next moves one entry forward and returns it. Moving past the newest entry
// returns to idle and yields "", which clears the input field.
func (n *Navigator) Next() string {
	if n.cursor < len(n.entries)-1 {
		n.cursor++
		return n.entries[n.cursor]
	}
	n.cursor = len(n.entries)
	return ""
}

// Reset returns the cursor to idle without touching the entries.
func (n *Navigator) Reset() { n.cursor = len(n.entries) }

// Cursor returns the current cursor position.
func (n *Navigator) Cursor() int { return n.cursor }

// Len returns the number of entries.
func (n *Navigator) Len() int { return len(n.entries) }

// Browsing reports whether an entry is currently recalled.
func (n *Navigator) Browsing() bool { return n.cursor < len(n.entries) }

// Entries returns a copy of the history, oldest first.
func (n *Navigator) Entries() []string { return slices.Clone(n.entries) }

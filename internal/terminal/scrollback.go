// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import "github.com/emadadel4/Eterminal/internal/render"

// Scrollback is the append-only output panel. Appending always scrolls to
// the newest line.
type Scrollback struct {
	lines    []render.Line
	maxLines int
	offset   int
}

// NewScrollback creates a scrollback keeping at most maxLines lines; zero
// keeps everything.
func NewScrollback(maxLines int) *Scrollback {
	return &Scrollback{maxLines: maxLines}
}

// Append adds line at the bottom and scrolls to it.
func (s *Scrollback) Append(line render.Line) {
	s.lines = append(s.lines, line)
	if s.maxLines > 0 && len(s.lines) > s.maxLines {
		drop := len(s.lines) - s.maxLines
		s.lines = append(s.lines[:0], s.lines[drop:]...)
	}
	s.offset = len(s.lines) - 1
}

// Clear removes every line.
func (s *Scrollback) Clear() {
	s.lines = nil
	s.offset = 0
}

// Lines returns the lines, oldest first. The slice must not be modified.
func (s *Scrollback) Lines() []render.Line { return s.lines }

// Len returns the number of lines.
func (s *Scrollback) Len() int { return len(s.lines) }

// Offset returns the index of the line scrolled into view.
func (s *Scrollback) Offset() int { return s.offset }

// ScrollTo moves the view to line i, clamped to the panel.
func (s *Scrollback) ScrollTo(i int) {
	switch {
	case len(s.lines) == 0 || i < 0:
		s.offset = 0
	case i >= len(s.lines):
		s.offset = len(s.lines) - 1
	default:
		s.offset = i
	}
}

// AtBottom reports whether the newest line is in view.
func (s *Scrollback) AtBottom() bool {
	return len(s.lines) == 0 || s.offset == len(s.lines)-1
}

// Plain returns the panel text, one line per entry.
func (s *Scrollback) Plain() []string {
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = l.Plain()
	}
	return out
}

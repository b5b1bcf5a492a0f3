// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/emadadel4/Eterminal/internal/ui/styles"
	"github.com/emadadel4/Eterminal/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: key hints on the left, store facts on the right.
type StatusBar struct {
	Backend   string // store backend name
	Bookmarks int    // number of URL mappings
	History   int    // number of history entries
	Recall    int    // 1-based history position while browsing, 0 otherwise
	Notice    string // transient message, replaces the hints
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar with default values.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetCounts updates the bookmark and history counts.
func (s *StatusBar) SetCounts(bookmarks, history int) {
	s.Bookmarks = bookmarks
	s.History = history
}

// SetRecall shows the history position; pass 0 when not browsing.
func (s *StatusBar) SetRecall(pos int) {
	s.Recall = pos
}

// SetNotice shows msg instead of the key hints until cleared with "".
func (s *StatusBar) SetNotice(msg string) {
	s.Notice = msg
}

func (s *StatusBar) left() string {
	if s.Notice != "" {
		return s.Notice
	}
	return "Enter run | Up/Down history | Tab complete | Ctrl+C quit"
}

func (s *StatusBar) right() string {
	var parts []string
	if s.Backend != "" {
		parts = append(parts, s.Backend)
	}
	parts = append(parts, fmt.Sprintf("%d urls", s.Bookmarks))
	if s.Recall > 0 {
		parts = append(parts, fmt.Sprintf("history %d/%d", s.Recall, s.History))
	} else {
		parts = append(parts, fmt.Sprintf("%d history", s.History))
	}
	return strings.Join(parts, " | ")
}

// View renders the status bar.
func (s *StatusBar) View() string {
	inner := s.Width - 2
	if inner < 10 {
		inner = 10
	}
	return s.theme.StatusBar.Width(s.Width).MaxWidth(s.Width).
		Render(util.SpreadWidth(s.left(), s.right(), inner))
}

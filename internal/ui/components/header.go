// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emadadel4/Eterminal/internal/ui/styles"
	"github.com/emadadel4/Eterminal/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the one-line title bar: title on the left, clock on the right.
type Header struct {
	Title string
	Clock string
	Width int
	theme *styles.Theme
}

// NewHeader creates a header with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "eterminal",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetClock updates the clock label; empty hides it.
func (h *Header) SetClock(label string) {
	h.Clock = label
}

// View renders the header.
func (h *Header) View() string {
	// Padding(0, 1) takes two columns.
	inner := h.Width - 2
	if inner < 10 {
		inner = 10
	}

	title := util.TruncateWidth(h.Title, inner)
	clock := h.Clock
	gap := inner - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		clock = ""
		gap = inner - lipgloss.Width(title)
	}

	styled := h.theme.Title.Render(title) + strings.Repeat(" ", gap)
	if clock != "" {
		styled += h.theme.Clock.Render(clock)
	}

	return h.theme.Header.Width(h.Width).MaxWidth(h.Width).Render(styled)
}

// Height is the number of rows View occupies.
func (h *Header) Height() int {
	return lipgloss.Height(h.View())
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/emadadel4/Eterminal/internal/commands"
)

// Theme bundles every style the console view uses.
type Theme struct {
	Header    lipgloss.Style
	Title     lipgloss.Style
	Clock     lipgloss.Style
	Prompt    lipgloss.Style
	Input     lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
	Hint      lipgloss.Style
	Link      lipgloss.Style

	info    lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style

	Width  int
	Height int
}

// NewTheme creates the default theme.
func NewTheme() *Theme {
	t := &Theme{Width: 80, Height: 24}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.Title = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.Clock = lipgloss.NewStyle().
		Foreground(Emerald)
	t.Prompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.Input = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Separator = lipgloss.NewStyle().
		Foreground(Overlay)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextMuted).
		Padding(0, 1)
	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Link = lipgloss.NewStyle().
		Foreground(Cyan).
		Underline(true)

	t.info = lipgloss.NewStyle().Foreground(Info)
	t.warning = lipgloss.NewStyle().Foreground(Warning)
	t.err = lipgloss.NewStyle().Foreground(Error)
}

// Severity returns the text style for an output line of severity sev.
// SeverityDefault uses the terminal's own foreground.
func (t *Theme) Severity(sev commands.Severity) lipgloss.Style {
	switch sev {
	case commands.SeverityInfo:
		return t.info
	case commands.SeverityWarning:
		return t.warning
	case commands.SeverityError:
		return t.err
	default:
		return lipgloss.NewStyle()
	}
}

// SetSize records the terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

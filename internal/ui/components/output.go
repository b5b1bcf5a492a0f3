// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emadadel4/Eterminal/internal/render"
	"github.com/emadadel4/Eterminal/internal/ui/styles"
)

// =============================================================================
// OUTPUT LINES
// =============================================================================

// RenderLine styles one output line for the viewport, wrapping at width.
// Links get the link style; headings are bold.
func RenderLine(theme *styles.Theme, line render.Line, width int) string {
	base := theme.Severity(line.Severity)
	if line.Heading {
		base = base.Bold(true)
	}

	var sb strings.Builder
	for _, seg := range line.Segments {
		if seg.Kind == render.SegmentLink {
			sb.WriteString(theme.Link.Render(seg.Text))
			continue
		}
		sb.WriteString(base.Render(seg.Text))
	}

	if width <= 0 {
		return sb.String()
	}
	return lipgloss.NewStyle().Width(width).Render(sb.String())
}

// RenderLines joins rendered lines with newlines.
func RenderLines(theme *styles.Theme, lines []render.Line, width int) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = RenderLine(theme, l, width)
	}
	return strings.Join(out, "\n")
}

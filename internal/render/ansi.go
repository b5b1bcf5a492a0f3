// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/muesli/termenv"

	"github.com/emadadel4/Eterminal/internal/commands"
)

// ANSI colours per severity; the browser uses CSS names for the same shades.
const (
	ansiWhite  = "#FFFFFF"
	ansiOrange = "#FFA500"
	ansiRed    = "#FF0000"
)

func ansiColor(sev commands.Severity) string {
	switch sev {
	case commands.SeverityWarning:
		return ansiOrange
	case commands.SeverityError:
		return ansiRed
	case commands.SeverityInfo:
		return ansiWhite
	default:
		return ""
	}
}

// ANSI renders the line for a terminal with the given colour profile. Links
// become OSC 8 hyperlinks and are underlined; headings are bold. The Ascii
// profile yields the plain text.
func ANSI(l Line, profile termenv.Profile) string {
	if profile == termenv.Ascii {
		return l.Plain()
	}

	color := ansiColor(l.Severity)

	var sb strings.Builder
	for _, seg := range l.Segments {
		style := profile.String(seg.Text)
		if color != "" {
			style = style.Foreground(profile.Color(color))
		}
		if l.Heading {
			style = style.Bold()
		}
		if seg.Kind == SegmentLink {
			sb.WriteString(termenv.Hyperlink(seg.Text, style.Underline().String()))
			continue
		}
		sb.WriteString(style.String())
	}
	return sb.String()
}

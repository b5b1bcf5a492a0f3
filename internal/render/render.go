// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns command output into display lines.
//
// A Line is split into text and link segments once; the HTML, plain and ANSI
// outputs are derived from the segments. Only http and https URLs become
// links.
package render

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/emadadel4/Eterminal/internal/commands"
)

// urlPattern matches an http(s) URL up to the next whitespace.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// =============================================================================
// SEGMENTS
// =============================================================================

// SegmentKind tells text and links apart.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentLink
)

// Segment is a run of plain text or a single URL.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Autolink splits text into segments; concatenating the segment texts gives
// back the input unchanged.
func Autolink(text string) []Segment {
	if text == "" {
		return nil
	}

	var segs []Segment
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Kind: SegmentText, Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Kind: SegmentLink, Text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Kind: SegmentText, Text: text[last:]})
	}
	return segs
}

// =============================================================================
// LINE
// =============================================================================

// Line is one rendered output line.
type Line struct {
	Segments []Segment
	Severity commands.Severity
	Scale    float64
	Heading  bool
}

// NewLine builds a line from text.
func NewLine(text string, sev commands.Severity, scale float64) Line {
	return Line{Segments: Autolink(text), Severity: sev, Scale: scale}
}

// FromResult builds the line for a handler result.
func FromResult(r commands.Result) Line {
	line := NewLine(r.Text, r.Severity, r.Scale)
	line.Heading = r.Heading
	return line
}

// Links returns the URLs in the line, in order.
func (l Line) Links() []string {
	var out []string
	for _, s := range l.Segments {
		if s.Kind == SegmentLink {
			out = append(out, s.Text)
		}
	}
	return out
}

// Plain returns the line text with links left as they were typed.
func (l Line) Plain() string {
	var sb strings.Builder
	for _, s := range l.Segments {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// ScaleClass returns the CSS class for a font scale in rem, such as
// "scale-1" or "scale-1_5". Zero means the default size and has no class.
func ScaleClass(scale float64) string {
	if scale <= 0 {
		return ""
	}
	v := strconv.FormatFloat(scale, 'f', -1, 64)
	return "scale-" + strings.ReplaceAll(v, ".", "_")
}

// HTML returns the line as a div. Severity and scale are carried as classes
// styled by term.css, so the page needs no inline styles. All text is
// escaped, so output can never inject markup.
func (l Line) HTML() string {
	var sb strings.Builder

	sb.WriteString(`<div class="line level-`)
	sb.WriteString(l.Severity.String())
	if class := ScaleClass(l.Scale); class != "" {
		sb.WriteString(" ")
		sb.WriteString(class)
	}
	sb.WriteString(`">`)

	if l.Heading {
		sb.WriteString("<h5>")
	}
	for _, s := range l.Segments {
		escaped := html.EscapeString(s.Text)
		if s.Kind == SegmentText {
			sb.WriteString(escaped)
			continue
		}
		sb.WriteString(`<a href="`)
		sb.WriteString(escaped)
		sb.WriteString(`" target="_blank" rel="noopener noreferrer" class="link">`)
		sb.WriteString(escaped)
		sb.WriteString("</a>")
	}
	if l.Heading {
		sb.WriteString("</h5>")
	}

	sb.WriteString("</div>")
	return sb.String()
}

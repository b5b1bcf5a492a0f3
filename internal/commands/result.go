// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "fmt"

// =============================================================================
// SEVERITY
// =============================================================================

// Severity is the display tag attached to a rendered line.
type Severity int

const (
	SeverityDefault Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lowercase name used in markup and logs.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "default"
	}
}

// ParseSeverity maps a name back to a Severity; unknown names are default.
func ParseSeverity(name string) Severity {
	switch name {
	case "info":
		return SeverityInfo
	case "warning":
		return SeverityWarning
	case "error":
		return SeverityError
	default:
		return SeverityDefault
	}
}

// =============================================================================
// EFFECTS
// =============================================================================

// EffectKind identifies a side effect requested by a handler.
type EffectKind int

const (
	// EffectClear empties the scrollback.
	EffectClear EffectKind = iota + 1
	// EffectOpenURL opens Effect.URL in a new browsing context.
	EffectOpenURL
)

// Effect is a side effect the session executes after the handler returns.
type Effect struct {
	Kind EffectKind
	URL  string
}

// ClearEffect requests an empty scrollback.
func ClearEffect() Effect { return Effect{Kind: EffectClear} }

// OpenEffect requests url to be opened.
func OpenEffect(url string) Effect { return Effect{Kind: EffectOpenURL, URL: url} }

// =============================================================================
// RESULT
// =============================================================================

// Result is what a handler hands back: optional text to render plus the
// effects to run. Handlers never touch the UI themselves.
type Result struct {
	// Text to render; empty means no output line unless Render is set.
	Text string

	// Render forces a line even when Text is empty.
	Render bool

	// Severity styles the rendered line.
	Severity Severity

	// Scale is the font scale in rem; zero leaves the default size.
	Scale float64

	// Heading renders the line as a heading (used for the unknown command notice).
	Heading bool

	// Effects run before Text is rendered.
	Effects []Effect
}

// HasOutput reports whether the result produces a rendered line.
func (r Result) HasOutput() bool { return r.Render || r.Text != "" }

// Text returns a default-severity result.
func Text(format string, args ...any) Result {
	return Result{Text: sprintf(format, args...)}
}

// Info returns an info-severity result at scale 1.
func Info(format string, args ...any) Result {
	return Result{Text: sprintf(format, args...), Severity: SeverityInfo, Scale: 1}
}

// Warning returns a warning-severity result.
func Warning(format string, args ...any) Result {
	return Result{Text: sprintf(format, args...), Severity: SeverityWarning}
}

// Error returns an error-severity result at scale 1.
func Error(format string, args ...any) Result {
	return Result{Text: sprintf(format, args...), Severity: SeverityError, Scale: 1}
}

// Silent returns a result with no output, only effects.
func Silent(effects ...Effect) Result {
	return Result{Effects: effects}
}

// With appends effects to r.
func (r Result) With(effects ...Effect) Result {
	r.Effects = append(r.Effects, effects...)
	return r
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "github.com/mattn/go-runewidth"

// TruncateWidth cuts s to at most maxWidth terminal columns, appending "..."
// when something was removed. Wide (CJK, emoji) runes count as two columns.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// SpreadWidth lays out left and right on one line of the given width,
// padding the gap with spaces. When both do not fit, left is truncated.
func SpreadWidth(left, right string, width int) string {
	rw := runewidth.StringWidth(right)
	room := width - rw - 1
	if room < 0 {
		return TruncateWidth(right, width)
	}
	left = TruncateWidth(left, room)
	gap := width - runewidth.StringWidth(left) - rw
	if gap < 1 {
		gap = 1
	}
	return left + runewidth.FillRight("", gap) + right
}

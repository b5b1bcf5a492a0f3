// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "strings"

// commandNames are the words Parse accepts as a first argument.
var commandNames = []string{"tui", "repl", "serve", "server", "config", "version", "help"}

// SuggestCommand returns the command name closest to a mistyped input, or ""
// when input is already valid or nothing is within edit range.
func SuggestCommand(input string) string {
	word := []rune(strings.ToLower(input))
	if len(word) < 2 {
		return ""
	}
	limit := 2
	if len(word) < 4 {
		limit = 1
	}

	best, bestDist := "", limit+1
	for _, name := range commandNames {
		d := editDistance(word, []rune(name))
		if d == 0 {
			return ""
		}
		if d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b over runes,
// computed with a single rolling row.
func editDistance(a, b []rune) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			above := row[j]
			sub := diag
			if a[i-1] != b[j-1] {
				sub++
			}
			row[j] = min(above+1, row[j-1]+1, sub)
			diag = above
		}
	}
	return row[len(b)]
}

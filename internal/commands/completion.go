// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// Completer offers command names for a partial token.
type Completer struct {
	registry *Registry
}

// NewCompleter creates a completer over registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns every visible command whose name starts with partial, in
// registry order. The comparison ignores case, like dispatch does. An empty
// partial completes to nothing.
func (c *Completer) Complete(partial string) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	if partial == "" {
		return nil
	}

	var matches []string
	for _, cmd := range c.registry.Visible() {
		if strings.HasPrefix(cmd.Name, partial) {
			matches = append(matches, cmd.Name)
		}
	}
	return matches
}

// CompleteLine returns whole-line replacements for line editors: each match
// followed by a space. Lines already past the command token get nothing.
func (c *Completer) CompleteLine(line string) []string {
	if strings.ContainsAny(strings.TrimLeft(line, " \t"), " \t") {
		return nil
	}
	matches := c.Complete(line)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m + " "
	}
	return out
}

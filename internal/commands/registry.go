// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import "strings"

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Handler executes a command. args are the tokens after the command name,
// case preserved.
type Handler func(env *Env, args []string) Result

// Command is one registry entry.
type Command struct {
	// Name is the lowercase command name (e.g., "open")
	Name string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "open [keyword]")
	Usage string

	// Handler runs the command
	Handler Handler

	// Hidden commands are dispatchable but not listed or completed
	Hidden bool
}

// =============================================================================
// HANDLER ENVIRONMENT
// =============================================================================

// Bookmarks is the keyword -> URL table handlers read and mutate.
type Bookmarks interface {
	Lookup(keyword string) (string, bool)
	Set(keyword, url string) error
	Entries() map[string]string
}

// Env is the session state passed by reference to every handler.
type Env struct {
	// Bookmarks backs open, newurl and mycommands
	Bookmarks Bookmarks

	// SearchURL is the search template; "{query}" is replaced by the
	// percent-encoded query
	SearchURL string

	// Registry is the registry the command was dispatched from (for help)
	Registry *Registry
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry maps command names to commands, keeping definition order for
// help and completion.
type Registry struct {
	ordered []*Command
	byName  map[string]*Command
}

// NewRegistry creates a registry holding the built-in commands.
func NewRegistry() *Registry {
	return NewRegistryWith(Builtins()...)
}

// NewRegistryWith creates a registry holding exactly cmds, in order.
func NewRegistryWith(cmds ...*Command) *Registry {
	r := &Registry{byName: make(map[string]*Command, len(cmds))}
	for _, cmd := range cmds {
		r.Register(cmd)
	}
	return r
}

// Register adds cmd. A command with the same name is replaced in place.
func (r *Registry) Register(cmd *Command) {
	name := strings.ToLower(cmd.Name)
	cmd.Name = name
	if _, exists := r.byName[name]; exists {
		for i, c := range r.ordered {
			if c.Name == name {
				r.ordered[i] = cmd
				break
			}
		}
	} else {
		r.ordered = append(r.ordered, cmd)
	}
	r.byName[name] = cmd
}

// Lookup finds a command by name, ignoring case.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// All returns every command in definition order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Visible returns the non-hidden commands in definition order.
func (r *Registry) Visible() []*Command {
	out := make([]*Command, 0, len(r.ordered))
	for _, cmd := range r.ordered {
		if !cmd.Hidden {
			out = append(out, cmd)
		}
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.ordered) }

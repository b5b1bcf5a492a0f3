// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command system for the terminal.
//
// This package parses input lines, resolves the command name against a
// registry and runs the matching handler. Handlers are pure: they return a
// Result describing the text to render and the effects (clear, open URL) the
// session should perform.
//
// # Key Types
//
//   - Registry: ordered, case-insensitive command table
//   - Command: name, description, usage and handler
//   - Env: session state handed to every handler
//   - Result: text, severity, scale and effects
//   - Parser: splits a line into command name and arguments
//   - Completer: prefix completion of command names
//
// # Built-in Commands
//
//   - about: attribution text
//   - help: list the commands
//   - clear, cls: empty the scrollback
//   - print: echo the arguments
//   - open: open a stored URL by keyword
//   - newurl: store a keyword -> URL mapping
//   - mycommands: list the stored mappings
//   - search: open a web search for the arguments
//
// # Usage
//
//	reg := commands.NewRegistry()
//	parsed := commands.NewParser(reg).Parse("open yt")
//	if parsed.Found() {
//	    result := parsed.Command.Handler(env, parsed.Args)
//	    ...
//	}
package commands

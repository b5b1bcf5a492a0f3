// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-TUI front ends for
// eterminal.
//
// # Key Types
//
//   - Command: the top-level command (tui, repl, serve, config, version, help)
//   - Args: parsed global and command-specific flags
//   - REPL: a liner-based line prompt driving a terminal.Session
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.PrintUsage(os.Stderr)
//	    os.Exit(cli.ExitCode(err))
//	}
//	switch cmd {
//	case cli.CmdConfig:
//	    err = cli.HandleConfig(args, os.Stdout)
//	// ...
//	}
//
// Flags may appear before or after the command name.
package cli

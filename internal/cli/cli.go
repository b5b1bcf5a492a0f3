// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command line parsing for eterminal.
package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdREPL
	CmdServe
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdREPL:
		return "repl"
	case CmdServe:
		return "serve"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Store      string
	StorePath  string
	Listen     string
	Verbose    bool

	// Explicit is set when the command was named rather than defaulted
	Explicit bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

// UsageError reports a malformed command line.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

const usageText = `eterminal - a command line for your start page

Usage:
  eterminal                     Start the terminal UI (plain prompt when not a TTY)
  eterminal tui                 Start the terminal UI
  eterminal repl                Start a plain line prompt
  eterminal serve               Serve the browser terminal
  eterminal config [show|get|set|keys|path|init]
  eterminal version             Show version information
  eterminal help                Show this help

Flags:
  --config PATH                 Config file (default ~/.eterminal/config.toml)
  --store memory|file|sqlite    Store backend
  --store-path PATH             Store file
  --listen ADDR                 Listen address for serve (default 127.0.0.1:8080)
  -v, --verbose                 Debug logging

Inside the terminal, type 'help' to list the commands.

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "eterminal version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining
	args.Explicit = true

	switch cmd {
	case "tui":
		return CmdTUI, args, nil
	case "repl":
		return CmdREPL, args, nil
	case "serve", "server":
		return CmdServe, args, nil
	case "config":
		parseConfigArgs(&args, remaining)
		return CmdConfig, args, nil
	case "version", "--version":
		return CmdVersion, args, nil
	case "help", "-h", "--help":
		return CmdHelp, args, nil
	default:
		msg := fmt.Sprintf("unknown command %q", cmd)
		if suggestion := SuggestCommand(cmd); suggestion != "" {
			msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
		}
		return CmdHelp, args, &UsageError{Message: msg}
	}
}

// parseGlobalFlags extracts global flags; flags may appear anywhere.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	valueFlags := map[string]*string{
		"--config":     &args.ConfigPath,
		"--store":      &args.Store,
		"--store-path": &args.StorePath,
		"--listen":     &args.Listen,
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		if arg == "-v" || arg == "--verbose" {
			args.Verbose = true
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		target, ok := valueFlags[name]
		if !ok {
			remaining = append(remaining, arg)
			continue
		}
		if !hasValue {
			if i+1 >= len(argv) {
				return nil, args, &UsageError{Message: fmt.Sprintf("flag %s needs a value", name)}
			}
			i++
			value = argv[i]
		}
		*target = value
	}

	return remaining, args, nil
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	if len(remaining) > 0 {
		args.Subcommand = strings.ToLower(remaining[0])
	}
	if len(remaining) > 1 {
		args.ConfigKey = remaining[1]
	}
	if len(remaining) > 2 {
		args.ConfigVal = strings.Join(remaining[2:], " ")
	}
}

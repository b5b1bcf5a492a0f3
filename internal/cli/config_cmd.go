// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - the "config" command.
//
// Subcommands:
//   show (default)      Print the effective configuration as TOML
//   get <key>           Print one value (dot notation, e.g. server.listen)
//   set <key> <value>   Change one value and save the file
//   keys                List every settable key
//   path                Print the config file location
//   init                Write a default config file if none exists
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/emadadel4/Eterminal/internal/config"
)

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig runs the config subcommand named in args.
func HandleConfig(args Args, w io.Writer) error {
	path, err := configFile(args)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		cfg, err := loadOrDefault(path)
		if err != nil {
			return err
		}
		fmt.Fprint(w, cfg.String())
		return nil

	case "get":
		if args.ConfigKey == "" {
			return &UsageError{Message: "usage: eterminal config get <key>"}
		}
		cfg, err := loadOrDefault(path)
		if err != nil {
			return err
		}
		value, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, value)
		return nil

	case "set":
		return handleConfigSet(path, args.ConfigKey, args.ConfigVal, w)

	case "keys":
		for _, key := range config.Keys() {
			fmt.Fprintln(w, key)
		}
		return nil

	case "path":
		fmt.Fprintln(w, path)
		return nil

	case "init":
		return handleConfigInit(path, w)

	default:
		return &UsageError{Message: fmt.Sprintf("unknown config subcommand: %s", args.Subcommand)}
	}
}

func handleConfigSet(path, key, value string, w io.Writer) error {
	if key == "" || value == "" {
		return &UsageError{Message: "usage: eterminal config set <key> <value>"}
	}

	cfg, err := loadOrDefault(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s = %s\n", key, value)
	return nil
}

func handleConfigInit(path string, w io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := config.SaveTo(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// configFile resolves --config or the default location.
func configFile(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.Path()
}

// loadOrDefault loads path, falling back to defaults when it does not exist.
func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return config.LoadFromPath(path)
}

// LoadConfig resolves the configuration for a run: --config when given,
// otherwise ~/.eterminal/config.toml, then the command line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	path, err := configFile(args)
	if err != nil {
		return nil, err
	}

	var cfg *config.Config
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Store != "" {
		cfg.Store.Backend = args.Store
	}
	if args.StorePath != "" {
		cfg.Store.Path = args.StorePath
	}
	if args.Listen != "" {
		cfg.Server.Listen = args.Listen
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for eterminal.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides and validation.
//
// # Key Types
//
//   - Config: main configuration structure
//   - StoreConfig: persistent store backend and path
//   - ServerConfig: browser front end listener and limits
//   - UIConfig: prompt, clock and scrollback settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags
//   - Environment variables (ETERMINAL_*)
//   - ~/.eterminal/config.toml (or --config)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	path, _ := cfg.StorePath()
package config

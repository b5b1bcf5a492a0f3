// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the eterminal packages.
//
// # Files
//
//   - AtomicWriteFile: crash-safe file replacement used by the JSON store
//     and the config writer
//   - ExpandHome: "~/" expansion for configured paths
//   - TruncateWidth, SpreadWidth: column-aware layout for the TUI header
package util

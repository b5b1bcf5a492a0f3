// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the persistent key-value store behind eterminal.
//
// The terminal persists two records, the URL mapping ("mycommands") and the
// command history ("commandHistory"), each serialized as JSON under its own
// key. The store itself is an opaque string-to-string map with three
// backends.
//
// # Key Types
//
//   - KV: backend interface (MemoryKV, FileKV, SQLiteKV)
//   - Records: loads/saves the two records with silent fallback to defaults
//   - URLMapping: the keyword table used by the open/newurl/mycommands commands
//
// # Usage
//
//	kv, err := storage.Open("file", "~/.eterminal/store.json")
//	records := storage.NewRecords(kv, nil, logger)
//	urls := storage.LoadURLMapping(records)
//	err = urls.Set("docs", "https://pkg.go.dev")
//
// # Storage Location
//
// The file backend defaults to ~/.eterminal/store.json and the SQLite
// backend to ~/.eterminal/store.db.
package storage

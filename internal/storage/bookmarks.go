// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"maps"
	"strings"
)

// URLMapping is the keyword -> URL table behind the open, newurl and
// mycommands commands. Keys are always lowercase. Not safe for concurrent
// use; each terminal session owns its own instance.
type URLMapping struct {
	records *Records
	entries map[string]string
}

// LoadURLMapping reads the mapping from records.
func LoadURLMapping(records *Records) *URLMapping {
	return &URLMapping{records: records, entries: records.LoadURLMapping()}
}

// Lookup resolves keyword case-insensitively.
func (m *URLMapping) Lookup(keyword string) (string, bool) {
	url, ok := m.entries[strings.ToLower(keyword)]
	return url, ok
}

// Set upserts keyword (lowercased) and persists the whole table. The
// in-memory entry is kept even when persisting fails.
func (m *URLMapping) Set(keyword, url string) error {
	m.entries[strings.ToLower(keyword)] = url
	return m.records.SaveURLMapping(m.entries)
}

// Entries returns a copy of the table.
func (m *URLMapping) Entries() map[string]string {
	return maps.Clone(m.entries)
}

// Len returns the number of keywords.
func (m *URLMapping) Len() int { return len(m.entries) }

// Reload replaces the in-memory table with what the store holds now.
func (m *URLMapping) Reload() {
	m.entries = m.records.LoadURLMapping()
}

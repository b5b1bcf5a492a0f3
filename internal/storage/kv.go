// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the persistent key-value store behind eterminal.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// =============================================================================
// KEY-VALUE INTERFACE
// =============================================================================

// KV is an opaque string-keyed store, the server-side analogue of browser
// local storage. Implementations must be safe for concurrent use because
// several terminal sessions may share one backend.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Close releases the backend's resources.
	Close() error
}

// ErrNotFound is returned by KV.Get when the key has never been set.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = errors.New("key not found")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open creates the backend named by kind. path is ignored for memory.
func Open(kind, path string) (KV, error) {
	switch kind {
	case BackendMemory, "":
		return NewMemoryKV(), nil
	case BackendFile:
		return NewFileKV(path)
	case BackendSQLite:
		return NewSQLiteKV(path)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory, file or sqlite)", kind)
	}
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryKV keeps everything in a map. Used by tests and --store memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV returns an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get implements KV.
func (m *MemoryKV) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements KV.
func (m *MemoryKV) Close() error { return nil }

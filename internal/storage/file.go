// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emadadel4/Eterminal/internal/util"
)

// =============================================================================
// JSON FILE BACKEND
// =============================================================================

// FileKV stores all keys in one JSON object on disk. Every Set rewrites the
// file atomically. The file is re-read on Get when another process changed
// it, so two eterminal instances sharing a file see each other's writes.
type FileKV struct {
	path string

	mu      sync.Mutex
	values  map[string]string
	modTime time.Time

	// written is the file's mtime after our last Set. foreign marks a reload
	// of another writer's data that Watch has not reported yet. loaded is set
	// after the initial read.
	loaded  bool
	written time.Time
	foreign bool
}

// NewFileKV opens (or lazily creates) the JSON store at path.
func NewFileKV(path string) (*FileKV, error) {
	path, err := util.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("file store needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	f := &FileKV{path: path, values: make(map[string]string)}
	f.mu.Lock()
	defer f.mu.Unlock()
	// A corrupt file is not fatal: Get keeps reporting the decode error so
	// callers fall back to defaults, and the next Set replaces the file.
	_ = f.reloadLocked()
	f.loaded = true
	return f, nil
}

// Path returns the file backing the store.
func (f *FileKV) Path() string { return f.path }

// reloadLocked re-reads the file if its modification time moved. A missing
// file is an empty store; a corrupt file is reported to the caller.
func (f *FileKV) reloadLocked() error {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat store %s: %w", f.path, err)
	}
	if !f.modTime.IsZero() && info.ModTime().Equal(f.modTime) {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("read store %s: %w", f.path, err)
	}
	values := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("decode store %s: %w", f.path, err)
		}
	}
	f.values = values
	f.modTime = info.ModTime()
	if f.loaded && !f.modTime.Equal(f.written) {
		f.foreign = true
	}
	return nil
}

// Get implements KV.
func (f *FileKV) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.reloadLocked(); err != nil {
		return "", err
	}
	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Pick up foreign writes first so they are not clobbered. A corrupt file
	// is replaced by our in-memory view.
	_ = f.reloadLocked()

	f.values[key] = value
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("write store %s: %w", f.path, err)
	}
	if info, err := os.Stat(f.path); err == nil {
		f.modTime = info.ModTime()
		f.written = f.modTime
	}
	return nil
}

// changedElsewhere reports whether the file on disk holds data this FileKV
// did not write itself, and resets the foreign flag.
func (f *FileKV) changedElsewhere() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	foreign := f.foreign
	f.foreign = false

	info, err := os.Stat(f.path)
	if err != nil {
		return true
	}
	return foreign || f.written.IsZero() || !info.ModTime().Equal(f.written)
}

// Close implements KV.
func (f *FileKV) Close() error { return nil }

// =============================================================================
// CHANGE WATCHING
// =============================================================================

// Watch calls onChange whenever another writer changes the store file, until
// ctx is cancelled. Events caused by this FileKV's own Set calls are
// skipped. Bursts of events inside debounce collapse into one call. onChange
// runs on the watcher goroutine.
func (f *FileKV) Watch(ctx context.Context, debounce time.Duration, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Atomic writes replace the inode, so watch the directory, not the file.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(f.path), err)
	}

	go func() {
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if f.changedElsewhere() {
					onChange()
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

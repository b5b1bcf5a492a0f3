// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// BACKEND CONTRACT TESTS
// =============================================================================

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileKV(filepath.Join(dir, "store.json"))
	require.NoError(t, err)

	sqlite, err := NewSQLiteKV(filepath.Join(dir, "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func TestKV_Contract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get("missing")
			assert.True(t, errors.Is(err, ErrNotFound), "Get(missing) err = %v", err)

			require.NoError(t, kv.Set("a", "1"))
			require.NoError(t, kv.Set("a", "2"))
			require.NoError(t, kv.Set("b", `{"x":"y"}`))

			v, err := kv.Get("a")
			require.NoError(t, err)
			assert.Equal(t, "2", v)

			v, err = kv.Get("b")
			require.NoError(t, err)
			assert.Equal(t, `{"x":"y"}`, v)
		})
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	kv, err := Open(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryKV{}, kv)

	kv, err = Open(BackendFile, filepath.Join(dir, "s.json"))
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	kv, err = Open(BackendSQLite, filepath.Join(dir, "s.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	kv.Close()

	_, err = Open("redis", "")
	assert.Error(t, err)
}

// =============================================================================
// FILE BACKEND TESTS
// =============================================================================

func TestFileKV_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	first, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(KeyHistory, `["help"]`))

	second, err := NewFileKV(path)
	require.NoError(t, err)
	v, err := second.Get(KeyHistory)
	require.NoError(t, err)
	assert.Equal(t, `["help"]`, v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileKV_CorruptFileIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	kv, err := NewFileKV(path)
	require.NoError(t, err)

	_, err = kv.Get(KeyURLMapping)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	// Writing replaces the corrupt content.
	require.NoError(t, kv.Set("k", "v"))
	v, err := kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileKV_WatchReportsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	require.NoError(t, kv.Watch(ctx, 20*time.Millisecond, func() { changed <- struct{}{} }))

	other, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, other.Set(KeyURLMapping, `{"x":"http://x.test"}`))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	v, err := kv.Get(KeyURLMapping)
	require.NoError(t, err)
	assert.Equal(t, `{"x":"http://x.test"}`, v)
}

func TestFileKV_WatchSkipsOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	kv, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(KeyHistory, `["help"]`))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	require.NoError(t, kv.Watch(ctx, 20*time.Millisecond, func() { changed <- struct{}{} }))

	require.NoError(t, kv.Set(KeyHistory, `["help","about"]`))
	select {
	case <-changed:
		t.Fatal("own write reported as a change")
	case <-time.After(300 * time.Millisecond):
	}

	other, err := NewFileKV(path)
	require.NoError(t, err)
	require.NoError(t, other.Set(KeyURLMapping, `{"x":"http://x.test"}`))
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("foreign write not reported")
	}
}

// =============================================================================
// RECORDS TESTS
// =============================================================================

func TestRecords_DefaultsOnFirstLoad(t *testing.T) {
	r := NewRecords(NewMemoryKV(), nil, nil)

	assert.Equal(t, DefaultURLMapping(), r.LoadURLMapping())
	assert.Equal(t, "https://www.youtube.com/@emadadel4", r.LoadURLMapping()["yt"])
	assert.Equal(t, "https://github.com/emadadel4", r.LoadURLMapping()["github"])
	assert.Equal(t, "https://emadadel4.github.io/", r.LoadURLMapping()["blog"])
	assert.Empty(t, r.LoadHistory())
	assert.NotNil(t, r.LoadHistory())
}

func TestRecords_CorruptDataFallsBack(t *testing.T) {
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(KeyURLMapping, "[1,2"))
	require.NoError(t, kv.Set(KeyHistory, `{"not":"a list"}`))

	r := NewRecords(kv, map[string]string{"d": "http://d.test"}, nil)
	assert.Equal(t, map[string]string{"d": "http://d.test"}, r.LoadURLMapping())
	assert.Empty(t, r.LoadHistory())
}

func TestRecords_RoundTripAndNormalization(t *testing.T) {
	kv := NewMemoryKV()
	r := NewRecords(kv, nil, nil)

	require.NoError(t, kv.Set(KeyURLMapping, `{"Docs":"https://pkg.go.dev","go":"https://go.dev"}`))
	assert.Equal(t, map[string]string{"docs": "https://pkg.go.dev", "go": "https://go.dev"}, r.LoadURLMapping())

	require.NoError(t, r.SaveHistory([]string{"help", "  ", "open yt"}))
	assert.Equal(t, []string{"help", "open yt"}, r.LoadHistory())

	// An explicitly empty mapping stays empty; it is not replaced by defaults.
	require.NoError(t, r.SaveURLMapping(map[string]string{}))
	assert.Empty(t, r.LoadURLMapping())
}

type failingKV struct{ *MemoryKV }

func (f *failingKV) Set(string, string) error { return errors.New("disk full") }

func TestURLMapping_SetKeepsEntryWhenPersistFails(t *testing.T) {
	r := NewRecords(&failingKV{MemoryKV: NewMemoryKV()}, map[string]string{}, nil)
	m := LoadURLMapping(r)

	err := m.Set("Foo", "http://a.example")
	assert.Error(t, err)

	url, ok := m.Lookup("foo")
	assert.True(t, ok)
	assert.Equal(t, "http://a.example", url)
}

func TestURLMapping_UpsertAndReload(t *testing.T) {
	kv := NewMemoryKV()
	r := NewRecords(kv, map[string]string{}, nil)
	m := LoadURLMapping(r)

	require.NoError(t, m.Set("FOO", "http://a.example"))
	require.NoError(t, m.Set("foo", "http://b.example"))
	assert.Equal(t, 1, m.Len())

	url, ok := m.Lookup("Foo")
	require.True(t, ok)
	assert.Equal(t, "http://b.example", url)

	// Another writer changes the store; Reload picks it up.
	require.NoError(t, r.SaveURLMapping(map[string]string{"bar": "http://c.example"}))
	m.Reload()
	_, ok = m.Lookup("foo")
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"bar": "http://c.example"}, m.Entries())
}

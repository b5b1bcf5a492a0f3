// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Record keys, shared with the browser page that used to own them.
const (
	KeyURLMapping = "mycommands"
	KeyHistory    = "commandHistory"
)

// DefaultURLMapping is the mapping created on first load when no
// configuration overrides it.
func DefaultURLMapping() map[string]string {
	return map[string]string{
		"yt":     "https://www.youtube.com/@emadadel4",
		"github": "https://github.com/emadadel4",
		"blog":   "https://emadadel4.github.io/",
	}
}

// =============================================================================
// RECORDS ADAPTER
// =============================================================================

// Records loads and saves the two named records (URL mapping and command
// history) on top of a KV. Reads never fail: absent or corrupt data falls
// back to defaults and is only logged.
type Records struct {
	kv       KV
	defaults map[string]string
	log      *zap.Logger
}

// NewRecords wraps kv. defaults seeds the URL mapping on first load; nil
// means DefaultURLMapping.
func NewRecords(kv KV, defaults map[string]string, log *zap.Logger) *Records {
	if defaults == nil {
		defaults = DefaultURLMapping()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Records{kv: kv, defaults: defaults, log: log}
}

// KV returns the underlying store.
func (r *Records) KV() KV { return r.kv }

// LoadURLMapping returns the stored mapping with keys lowercased, or a copy
// of the defaults when nothing usable is stored.
func (r *Records) LoadURLMapping() map[string]string {
	var stored map[string]string
	if !r.load(KeyURLMapping, &stored) || stored == nil {
		return normalizeKeys(r.defaults)
	}
	return normalizeKeys(stored)
}

// SaveURLMapping persists the mapping.
func (r *Records) SaveURLMapping(mapping map[string]string) error {
	return r.save(KeyURLMapping, mapping)
}

// LoadHistory returns the stored command history, or an empty slice.
func (r *Records) LoadHistory() []string {
	var stored []string
	if !r.load(KeyHistory, &stored) {
		return []string{}
	}
	// Keep the append-only invariant for hand-edited data: no blank entries.
	lines := stored[:0]
	for _, line := range stored {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SaveHistory persists the command history.
func (r *Records) SaveHistory(lines []string) error {
	if lines == nil {
		lines = []string{}
	}
	return r.save(KeyHistory, lines)
}

func (r *Records) load(key string, into any) bool {
	raw, err := r.kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Warn("STORE_FALLBACK", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		r.log.Warn("STORE_FALLBACK", zap.String("key", key), zap.String("reason", "unparsable"), zap.Error(err))
		return false
	}
	return true
}

func (r *Records) save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(key, string(data)); err != nil {
		r.log.Warn("STORE_WRITE_FAILED", zap.String("key", key), zap.Error(err))
		return err
	}
	r.log.Debug("STORE_WRITE", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func normalizeKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

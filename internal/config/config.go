// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/emadadel4/Eterminal/internal/util"
)

// Version is the configuration schema version written by Save.
const Version = "1"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete eterminal configuration.
type Config struct {
	Version string `toml:"version"`

	// Store selects where URL shortcuts and history are kept
	Store StoreConfig `toml:"store"`

	// Search configures the search command
	Search SearchConfig `toml:"search"`

	// Server configures the browser front end
	Server ServerConfig `toml:"server"`

	// UI configures the terminal front ends
	UI UIConfig `toml:"ui"`

	// Log configures structured logging
	Log LogConfig `toml:"log"`

	// Bookmarks seeds the URL mapping on first run
	Bookmarks BookmarksConfig `toml:"bookmarks"`
}

// StoreConfig selects the persistent store.
type StoreConfig struct {
	// Backend is "memory", "file" or "sqlite"
	Backend string `toml:"backend"`
	// Path of the store file; empty means ~/.eterminal/store.json (file) or
	// ~/.eterminal/store.db (sqlite)
	Path string `toml:"path"`
}

// SearchConfig configures web search.
type SearchConfig struct {
	// URL is the search template; "{query}" is replaced by the encoded query
	URL string `toml:"url"`
}

// ServerConfig configures the HTTP/WebSocket server.
type ServerConfig struct {
	// Listen is the host:port to bind
	Listen string `toml:"listen"`
	// AllowedOrigins lists extra WebSocket origins besides the server's own host
	AllowedOrigins []string `toml:"allowed_origins"`
	// KeysPerSecond limits key events per connection (0 = unlimited)
	KeysPerSecond float64 `toml:"keys_per_second"`
	// KeyBurst is the rate limiter burst size
	KeyBurst int `toml:"key_burst"`
	// ShutdownTimeoutSecs bounds graceful shutdown
	ShutdownTimeoutSecs int `toml:"shutdown_timeout_secs"`
}

// UIConfig configures the TUI and REPL.
type UIConfig struct {
	// Prompt shown before the input
	Prompt string `toml:"prompt"`
	// Clock shows the 12-hour clock label
	Clock bool `toml:"clock"`
	// MaxLines caps the scrollback (0 = unlimited)
	MaxLines int `toml:"max_lines"`
	// Color is "auto", "always" or "never"
	Color string `toml:"color"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error
	Level string `toml:"level"`
	// File receives JSON logs; empty logs to stderr (server, repl) or nowhere (tui)
	File string `toml:"file"`
}

// BookmarksConfig holds the first-run URL mapping.
type BookmarksConfig struct {
	Defaults map[string]string `toml:"defaults"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: Version,
		Store: StoreConfig{
			Backend: BackendFile,
		},
		Search: SearchConfig{
			URL: "https://duckduckgo.com/?t=ffab&q={query}",
		},
		Server: ServerConfig{
			Listen:              "127.0.0.1:8080",
			KeysPerSecond:       20,
			KeyBurst:            40,
			ShutdownTimeoutSecs: 5,
		},
		UI: UIConfig{
			Prompt:   "$ ",
			Clock:    true,
			MaxLines: 1000,
			Color:    "auto",
		},
		Log: LogConfig{
			Level: "info",
		},
		Bookmarks: BookmarksConfig{
			Defaults: map[string]string{
				"yt":     "https://www.youtube.com/@emadadel4",
				"github": "https://github.com/emadadel4",
				"blog":   "https://emadadel4.github.io/",
			},
		},
	}
}

// fillDefaults restores values a file blanked out explicitly.
func fillDefaults(cfg *Config) {
	d := Default()

	if cfg.Version == "" {
		cfg.Version = d.Version
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = d.Store.Backend
	}
	if cfg.Search.URL == "" {
		cfg.Search.URL = d.Search.URL
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = d.Server.Listen
	}
	if cfg.Server.KeyBurst == 0 {
		cfg.Server.KeyBurst = d.Server.KeyBurst
	}
	if cfg.Server.ShutdownTimeoutSecs == 0 {
		cfg.Server.ShutdownTimeoutSecs = d.Server.ShutdownTimeoutSecs
	}
	if cfg.UI.Prompt == "" {
		cfg.UI.Prompt = d.UI.Prompt
	}
	if cfg.UI.Color == "" {
		cfg.UI.Color = d.UI.Color
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Bookmarks.Defaults == nil {
		cfg.Bookmarks.Defaults = d.Bookmarks.Defaults
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the eterminal configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".eterminal"), nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// StorePath returns the configured store path, or the default file for the
// backend. Memory stores have no path.
func (c *Config) StorePath() (string, error) {
	if c.Store.Backend == BackendMemory {
		return "", nil
	}
	if c.Store.Path != "" {
		return util.ExpandHome(c.Store.Path)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Store.Backend == BackendSQLite {
		return filepath.Join(dir, "store.db"), nil
	}
	return filepath.Join(dir, "store.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.eterminal/config.toml. A missing file yields the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	cfg.Bookmarks.Defaults = nil
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to ~/.eterminal/config.toml.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML with a header comment. The file is
// written atomically with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	var sb strings.Builder
	sb.WriteString("# eterminal configuration file\n")
	sb.WriteString("# Generated by eterminal - edit with care\n")
	sb.WriteString("#\n")
	sb.WriteString("# Documentation: https://github.com/emadadel4/Eterminal\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		add("store.backend", "invalid backend '%s', must be one of: memory, file, sqlite", c.Store.Backend)
	}

	if u, err := url.Parse(strings.ReplaceAll(c.Search.URL, "{query}", "q")); err != nil {
		add("search.url", "invalid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("search.url", "must be an http or https URL")
	}

	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		add("server.listen", "invalid address '%s': %v", c.Server.Listen, err)
	}
	if c.Server.KeysPerSecond < 0 {
		add("server.keys_per_second", "must not be negative")
	}
	if c.Server.KeyBurst < 1 {
		add("server.key_burst", "must be at least 1")
	}
	if c.Server.ShutdownTimeoutSecs < 1 || c.Server.ShutdownTimeoutSecs > 300 {
		add("server.shutdown_timeout_secs", "must be between 1 and 300")
	}

	if c.UI.MaxLines < 0 {
		add("ui.max_lines", "must not be negative")
	}
	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		add("ui.color", "invalid value '%s', must be one of: auto, always, never", c.UI.Color)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	for k := range c.Bookmarks.Defaults {
		if k == "" || strings.ContainsAny(k, " \t\n") {
			add("bookmarks.defaults", "invalid keyword %q: must be a single word", k)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - ETERMINAL_STORE: overrides store.backend
//   - ETERMINAL_STORE_PATH: overrides store.path
//   - ETERMINAL_LISTEN: overrides server.listen
//   - ETERMINAL_LOG_LEVEL: overrides log.level
//   - ETERMINAL_LOG_FILE: overrides log.file
//   - ETERMINAL_SEARCH_URL: overrides search.url
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ETERMINAL_STORE"); v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("ETERMINAL_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("ETERMINAL_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("ETERMINAL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ETERMINAL_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ETERMINAL_SEARCH_URL"); v != "" {
		c.Search.URL = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.listen").
func (c *Config) Get(key string) (any, error) {
	field, err := c.field(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a scalar configuration value using dot notation. String values
// are converted to the field's type.
func (c *Config) Set(key string, value any) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// Keys returns every scalar configuration key in dot notation.
func Keys() []string {
	var keys []string
	collectKeys(reflect.TypeOf(Config{}), "", &keys)
	sort.Strings(keys)
	return keys
}

func collectKeys(t reflect.Type, prefix string, keys *[]string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := prefix + f.Tag.Get("toml")
		switch f.Type.Kind() {
		case reflect.Struct:
			collectKeys(f.Type, name+".", keys)
		case reflect.Map, reflect.Slice:
		default:
			*keys = append(*keys, name)
		}
	}
}

// field resolves a dotted key by TOML tag.
func (c *Config) field(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		name := strings.ReplaceAll(strings.ToLower(part), "-", "_")
		next, ok := fieldByTag(v, name)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return next, nil
		}
		if next.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = next
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a value with type conversion.
func setFieldValue(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %w", err)
			}
			field.SetBool(b)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// String renders the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return sb.String()
}

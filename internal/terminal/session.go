// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package terminal wires the command registry, history and renderer into one
// interactive session.
//
// A Session owns the input field, the scrollback, the command history and
// the URL mapping of a single user. Front ends feed it key presses and
// mirror the Events it emits. A Session is not safe for concurrent use: all
// calls must come from the owner's event loop.
package terminal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emadadel4/Eterminal/internal/browser"
	"github.com/emadadel4/Eterminal/internal/commands"
	"github.com/emadadel4/Eterminal/internal/history"
	"github.com/emadadel4/Eterminal/internal/render"
	"github.com/emadadel4/Eterminal/internal/storage"
)

// DefaultPrompt is shown in front of the input field.
const DefaultPrompt = "$ "

// Options configures a Session. Zero values get sensible defaults.
type Options struct {
	// ID names the session in logs; empty means a fresh UUID.
	ID string

	// Registry defaults to commands.NewRegistry().
	Registry *commands.Registry

	// Records seeds Bookmarks and History when those are nil.
	Records *storage.Records

	// Bookmarks backs open, newurl and mycommands.
	Bookmarks commands.Bookmarks

	// History defaults to an empty, unpersisted navigator.
	History *history.Navigator

	// SearchURL is the search template ("{query}" placeholder).
	SearchURL string

	// Opener runs open-URL effects locally. nil leaves opening to the
	// front end (EventOpen is emitted either way).
	Opener browser.Opener

	// Listener receives display events.
	Listener Listener

	// MaxLines caps the scrollback; zero keeps everything.
	MaxLines int

	Logger *zap.Logger
}

// Session is one terminal instance.
type Session struct {
	id         string
	registry   *commands.Registry
	parser     *commands.Parser
	completer  *commands.Completer
	env        *commands.Env
	history    *history.Navigator
	scrollback *Scrollback
	opener     browser.Opener
	listener   Listener
	log        *zap.Logger
	input      string
}

// New creates a session.
func New(opts Options) *Session {
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.Registry == nil {
		opts.Registry = commands.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	log := opts.Logger.With(zap.String("session", opts.ID))

	if opts.Bookmarks == nil {
		if opts.Records != nil {
			opts.Bookmarks = storage.LoadURLMapping(opts.Records)
		} else {
			opts.Bookmarks = storage.LoadURLMapping(storage.NewRecords(storage.NewMemoryKV(), nil, log))
		}
	}
	if opts.History == nil {
		if opts.Records != nil {
			opts.History = history.New(opts.Records.LoadHistory(), opts.Records)
		} else {
			opts.History = history.New(nil, nil)
		}
	}
	opts.History.OnSaveError(func(err error) {
		log.Warn("HISTORY_SAVE_FAILED", zap.Error(err))
	})
	if opts.SearchURL == "" {
		opts.SearchURL = commands.DefaultSearchURL
	}

	return &Session{
		id:        opts.ID,
		registry:  opts.Registry,
		parser:    commands.NewParser(opts.Registry),
		completer: commands.NewCompleter(opts.Registry),
		env: &commands.Env{
			Bookmarks: opts.Bookmarks,
			SearchURL: opts.SearchURL,
			Registry:  opts.Registry,
		},
		history:    opts.History,
		scrollback: NewScrollback(opts.MaxLines),
		opener:     opts.Opener,
		listener:   opts.Listener,
		log:        log,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Input returns the current input field value.
func (s *Session) Input() string { return s.input }

// SetInput replaces the input field value, as typing does.
func (s *Session) SetInput(value string) { s.input = value }

// Scrollback returns the output panel.
func (s *Session) Scrollback() *Scrollback { return s.scrollback }

// History returns the command history.
func (s *Session) History() *history.Navigator { return s.history }

// Bookmarks returns the URL mapping.
func (s *Session) Bookmarks() commands.Bookmarks { return s.env.Bookmarks }

// Registry returns the command registry.
func (s *Session) Registry() *commands.Registry { return s.registry }

// Completer returns the completion engine.
func (s *Session) Completer() *commands.Completer { return s.completer }

// SetListener replaces the event listener.
func (s *Session) SetListener(l Listener) { s.listener = l }

// ReloadBookmarks re-reads the URL mapping from the store, if the mapping
// supports it.
func (s *Session) ReloadBookmarks() {
	if r, ok := s.env.Bookmarks.(interface{ Reload() }); ok {
		r.Reload()
		s.log.Debug("BOOKMARKS_RELOADED")
	}
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// HandleKey sets the input field to value (what the user has typed so far)
// and performs the key's action.
func (s *Session) HandleKey(k Key, value string) {
	s.input = value
	switch ActionFor(k) {
	case ActionSubmit:
		s.Submit()
	case ActionRecallPrevious:
		s.RecallPrevious()
	case ActionRecallNext:
		s.RecallNext()
	case ActionComplete:
		s.Complete()
	}
}

// Submit interprets the input field and clears it.
func (s *Session) Submit() {
	line := s.input
	s.input = ""
	s.Interpret(line)
}

// RecallPrevious puts the previous history entry into the input field. At
// the oldest entry nothing changes.
func (s *Session) RecallPrevious() {
	if line, ok := s.history.Previous(); ok {
		s.input = line
	}
}

// RecallNext puts the next history entry into the input field, or clears it
// when moving past the newest entry.
func (s *Session) RecallNext() {
	s.input = s.history.Next()
}

// Complete completes the command name in the input field. One match
// replaces the input; several are listed.
func (s *Session) Complete() {
	partial := strings.TrimSpace(s.input)
	if partial == "" {
		return
	}
	matches := s.completer.Complete(partial)
	switch len(matches) {
	case 0:
	case 1:
		s.input = matches[0] + " "
	default:
		s.Print("Possible commands: "+strings.Join(matches, ", "), commands.SeverityDefault)
	}
}

// =============================================================================
// INTERPRETER
// =============================================================================

// Interpret runs one input line: record it in the history, dispatch it and
// apply the result. Blank lines do nothing.
func (s *Session) Interpret(raw string) {
	line := commands.NormalizeLine(raw)
	if line == "" {
		return
	}
	s.history.Record(line)

	parsed := s.parser.Parse(line)
	if !parsed.Found() {
		s.log.Debug("UNKNOWN_COMMAND", zap.String("command", parsed.CommandName))
		s.apply(commands.Result{
			Text:     commands.MsgUnknownCommand,
			Severity: commands.SeverityError,
			Scale:    1,
			Heading:  true,
		})
		return
	}

	s.log.Debug("COMMAND_DISPATCH",
		zap.String("command", parsed.CommandName),
		zap.Int("args", len(parsed.Args)))

	s.apply(s.dispatch(parsed))
}

// dispatch runs the handler; a panic becomes an error result.
func (s *Session) dispatch(parsed commands.ParseResult) (result commands.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("COMMAND_PANIC",
				zap.String("command", parsed.CommandName),
				zap.Any("panic", r))
			result = commands.Error("Command %q failed: %v", parsed.CommandName, r)
		}
	}()
	return parsed.Command.Handler(s.env, parsed.Args)
}

// apply runs the effects, then renders the text.
func (s *Session) apply(r commands.Result) {
	for _, eff := range r.Effects {
		switch eff.Kind {
		case commands.EffectClear:
			s.scrollback.Clear()
			s.emit(Event{Kind: EventClear})
		case commands.EffectOpenURL:
			if err := s.open(eff.URL); err != nil {
				s.append(render.FromResult(commands.Error("Cannot open: %v", err)))
				return
			}
		}
	}
	if r.HasOutput() {
		s.append(render.FromResult(r))
	}
}

// open hands url to the opener and front ends. Anything but http(s) is
// refused before it is emitted.
func (s *Session) open(url string) error {
	if err := browser.Validate(url); err != nil {
		s.log.Warn("OPEN_REFUSED", zap.String("url", url), zap.Error(err))
		return err
	}
	s.log.Info("OPEN_URL", zap.String("url", url))
	if s.opener != nil {
		if err := s.opener.Open(url); err != nil {
			s.log.Warn("OPEN_FAILED", zap.String("url", url), zap.Error(err))
		}
	}
	s.emit(Event{Kind: EventOpen, URL: url})
	return nil
}

// Print renders text as a line outside of any command, e.g. front end
// notices.
func (s *Session) Print(text string, sev commands.Severity) {
	s.append(render.NewLine(text, sev, 0))
}

// Printf is Print with formatting.
func (s *Session) Printf(sev commands.Severity, format string, args ...any) {
	s.Print(fmt.Sprintf(format, args...), sev)
}

func (s *Session) append(line render.Line) {
	s.scrollback.Append(line)
	s.emit(Event{Kind: EventAppend, Line: line})
}

func (s *Session) emit(ev Event) {
	if s.listener != nil {
		s.listener(ev)
	}
}

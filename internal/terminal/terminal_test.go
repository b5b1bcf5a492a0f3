// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emadadel4/Eterminal/internal/browser"
	"github.com/emadadel4/Eterminal/internal/commands"
	"github.com/emadadel4/Eterminal/internal/render"
	"github.com/emadadel4/Eterminal/internal/storage"
)

type fixture struct {
	kv       *storage.MemoryKV
	records  *storage.Records
	session  *Session
	recorder *Recorder
	opened   []string
}

func newFixture(t *testing.T, defaults map[string]string) *fixture {
	t.Helper()
	f := &fixture{kv: storage.NewMemoryKV(), recorder: &Recorder{}}
	if defaults == nil {
		defaults = map[string]string{"yt": "https://www.youtube.com/"}
	}
	f.records = storage.NewRecords(f.kv, defaults, nil)
	f.session = New(Options{
		ID:       "test",
		Records:  f.records,
		Listener: f.recorder.Listen,
		Opener: browser.OpenerFunc(func(url string) error {
			f.opened = append(f.opened, url)
			return nil
		}),
	})
	return f
}

func (f *fixture) lines() []string { return f.session.Scrollback().Plain() }

func TestKeys(t *testing.T) {
	tests := []struct {
		name   string
		action Action
	}{
		{"Enter", ActionSubmit},
		{"ArrowUp", ActionRecallPrevious},
		{"ArrowDown", ActionRecallNext},
		{"Tab", ActionComplete},
		{"a", ActionNone},
		{"", ActionNone},
	}
	for _, tt := range tests {
		k := ParseKey(tt.name)
		assert.Equal(t, tt.action, ActionFor(k), tt.name)
	}
	assert.Equal(t, "ArrowUp", KeyUp.String())
}

func TestInterpret_EveryCommandHasAnEffect(t *testing.T) {
	lines := []string{
		"about", "help", "clear", "cls", "print hi", "print", "open yt",
		"newurl go https://go.dev", "mycommands", "search golang",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			f := newFixture(t, nil)
			f.session.Print("before", commands.SeverityDefault)
			f.recorder.Drain()

			f.session.Interpret(line)
			assert.NotEmpty(t, f.recorder.Drain(), "no line and no scrollback mutation")
		})
	}
}

func TestInterpret_UnknownCommand(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("unknownxyz")

	events := f.recorder.Drain()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, EventAppend, ev.Kind)
	assert.Equal(t, commands.SeverityError, ev.Line.Severity)
	assert.True(t, ev.Line.Heading)
	assert.Contains(t, ev.Line.Plain(), "Unknown command")
}

func TestInterpret_BlankLineDoesNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("   \t ")
	assert.Empty(t, f.recorder.Drain())
	assert.Equal(t, 0, f.session.History().Len())
}

func TestInterpret_CommandCaseInsensitiveArgsPreserved(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("PRINT Hello World")
	assert.Equal(t, []string{"Hello World"}, f.lines())
}

func TestInterpret_RecordsHistoryBeforeDispatch(t *testing.T) {
	f := newFixture(t, nil)
	var seen []string
	f.session.Registry().Register(&commands.Command{
		Name: "peek",
		Handler: func(env *commands.Env, args []string) commands.Result {
			seen = f.session.History().Entries()
			return commands.Result{}
		},
	})

	f.session.Interpret("peek")
	assert.Equal(t, []string{"peek"}, seen)

	raw, err := f.kv.Get(storage.KeyHistory)
	require.NoError(t, err)
	assert.JSONEq(t, `["peek"]`, raw)
}

func TestInterpret_UnknownCommandStillRecorded(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("unknownxyz")
	assert.Equal(t, []string{"unknownxyz"}, f.session.History().Entries())
}

func TestInterpret_PanicIsContained(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Registry().Register(&commands.Command{
		Name: "boom",
		Handler: func(*commands.Env, []string) commands.Result {
			panic("kaboom")
		},
	})

	require.NotPanics(t, func() { f.session.Interpret("boom") })
	events := f.recorder.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, commands.SeverityError, events[0].Line.Severity)
	assert.Equal(t, `Command "boom" failed: kaboom`, events[0].Line.Plain())
}

func TestClear(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("print one")
	f.session.Interpret("print two")
	require.Equal(t, 2, f.session.Scrollback().Len())
	f.recorder.Drain()

	f.session.Interpret("cls")
	assert.Equal(t, 0, f.session.Scrollback().Len())
	events := f.recorder.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventClear, events[0].Kind)
}

func TestOpen(t *testing.T) {
	f := newFixture(t, nil)

	f.session.Interpret("open YT")
	assert.Equal(t, []string{"https://www.youtube.com/"}, f.opened)
	events := f.recorder.Drain()
	require.Len(t, events, 2)
	assert.Equal(t, EventOpen, events[0].Kind, "effects run before the text")
	assert.Equal(t, EventAppend, events[1].Kind)
	assert.Equal(t, []string{"https://www.youtube.com/"}, events[1].Line.Links())

	f.session.Interpret("open nope")
	assert.Len(t, f.opened, 1, "a miss opens nothing")
	events = f.recorder.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, commands.SeverityError, events[0].Line.Severity)
	assert.Contains(t, events[0].Line.Plain(), "No URL found")
}

func TestOpen_OpenerFailureStillConfirms(t *testing.T) {
	f := newFixture(t, nil)
	f.session.opener = browser.OpenerFunc(func(string) error { return errors.New("no display") })

	f.session.Interpret("open yt")
	assert.Equal(t, []string{"🌐 Opening https://www.youtube.com/..."}, f.lines())
}

func TestOpen_RefusesNonHTTPMapping(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("newurl x javascript:alert(document.domain)")
	f.recorder.Drain()

	f.session.Interpret("open x")
	assert.Empty(t, f.opened)
	events := f.recorder.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventAppend, events[0].Kind, "no open event for a refused URL")
	assert.Equal(t, commands.SeverityError, events[0].Line.Severity)
	assert.Contains(t, events[0].Line.Plain(), "Cannot open")
	assert.NotContains(t, events[0].Line.Plain(), "Opening")
}

func TestPrint_BareAppendsEmptyLine(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("print")

	events := f.recorder.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventAppend, events[0].Kind)
	assert.Equal(t, commands.SeverityInfo, events[0].Line.Severity)
	assert.Equal(t, []string{""}, f.lines())
}

func TestNewURL_Idempotent(t *testing.T) {
	f := newFixture(t, map[string]string{})
	f.session.Interpret("newurl foo http://a.example")
	f.session.Interpret("newurl foo http://a.example")

	assert.Equal(t, map[string]string{"foo": "http://a.example"}, f.session.Bookmarks().Entries())

	raw, err := f.kv.Get(storage.KeyURLMapping)
	require.NoError(t, err)
	var stored map[string]string
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, map[string]string{"foo": "http://a.example"}, stored)
}

func TestMyCommands_Empty(t *testing.T) {
	f := newFixture(t, map[string]string{})
	f.session.Interpret("mycommands")
	assert.Equal(t, []string{"No custom commands found."}, f.lines())
}

func TestSearch_OpensEncodedURL(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Interpret("search hello world")
	assert.Equal(t, []string{"https://duckduckgo.com/?t=ffab&q=hello%20world"}, f.opened)
	assert.Equal(t, []string{"Searching for: hello world"}, f.lines())
}

func TestHistoryRoundTrip(t *testing.T) {
	f := newFixture(t, nil)
	s := f.session
	for _, line := range []string{"print L1", "print L2", "print L3"} {
		s.HandleKey(KeyEnter, line)
		assert.Equal(t, "", s.Input(), "submit clears the input")
	}

	for _, want := range []string{"print L3", "print L2", "print L1"} {
		s.HandleKey(KeyUp, s.Input())
		assert.Equal(t, want, s.Input())
	}
	s.HandleKey(KeyUp, s.Input())
	assert.Equal(t, "print L1", s.Input(), "ArrowUp at the oldest entry is a no-op")

	for _, want := range []string{"print L2", "print L3", ""} {
		s.HandleKey(KeyDown, s.Input())
		assert.Equal(t, want, s.Input())
	}
}

func TestHistoryRestoredFromStore(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(storage.KeyHistory, `["help","open yt"]`))
	s := New(Options{Records: storage.NewRecords(kv, nil, nil)})

	assert.Equal(t, 2, s.History().Cursor())
	s.HandleKey(KeyUp, "")
	assert.Equal(t, "open yt", s.Input())
}

func TestComplete(t *testing.T) {
	reg := commands.NewRegistryWith(
		&commands.Command{Name: "help", Handler: func(*commands.Env, []string) commands.Result { return commands.Result{} }},
		&commands.Command{Name: "open", Handler: func(*commands.Env, []string) commands.Result { return commands.Result{} }},
		&commands.Command{Name: "about", Handler: func(*commands.Env, []string) commands.Result { return commands.Result{} }},
		&commands.Command{Name: "apropos", Handler: func(*commands.Env, []string) commands.Result { return commands.Result{} }},
	)
	rec := &Recorder{}
	s := New(Options{Registry: reg, Listener: rec.Listen})

	s.HandleKey(KeyTab, "o")
	assert.Equal(t, "open ", s.Input())

	s.HandleKey(KeyTab, "x")
	assert.Equal(t, "x", s.Input())
	assert.Empty(t, rec.Drain())

	s.HandleKey(KeyTab, "a")
	assert.Equal(t, "a", s.Input(), "several matches leave the input alone")
	events := rec.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "Possible commands: about, apropos", events[0].Line.Plain())
	assert.Equal(t, commands.SeverityDefault, events[0].Line.Severity)

	s.HandleKey(KeyTab, "   ")
	assert.Empty(t, rec.Drain())
}

func TestOtherKeysOnlyUpdateInput(t *testing.T) {
	f := newFixture(t, nil)
	f.session.HandleKey(KeyNone, "hel")
	assert.Equal(t, "hel", f.session.Input())
	assert.Empty(t, f.recorder.Drain())
}

func TestReloadBookmarks(t *testing.T) {
	f := newFixture(t, map[string]string{})
	require.NoError(t, f.kv.Set(storage.KeyURLMapping, `{"Docs":"https://go.dev/doc/"}`))

	f.session.ReloadBookmarks()
	url, ok := f.session.Bookmarks().Lookup("docs")
	assert.True(t, ok)
	assert.Equal(t, "https://go.dev/doc/", url)
}

func TestScrollback(t *testing.T) {
	sb := NewScrollback(2)
	assert.True(t, sb.AtBottom())

	for _, text := range []string{"a", "b", "c"} {
		sb.Append(render.NewLine(text, commands.SeverityDefault, 0))
		assert.True(t, sb.AtBottom(), "append scrolls to the newest line")
	}
	assert.Equal(t, []string{"b", "c"}, sb.Plain())

	sb.ScrollTo(-3)
	assert.Equal(t, 0, sb.Offset())
	assert.False(t, sb.AtBottom())
	sb.ScrollTo(99)
	assert.Equal(t, 1, sb.Offset())

	sb.Clear()
	assert.Equal(t, 0, sb.Len())
}

func TestNew_GeneratesID(t *testing.T) {
	a, b := New(Options{}), New(Options{})
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, strings.Count(a.ID(), "-") == 4)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emadadel4/Eterminal/internal/clock"
	"github.com/emadadel4/Eterminal/internal/terminal"
	"github.com/emadadel4/Eterminal/internal/ui/components"
	"github.com/emadadel4/Eterminal/internal/ui/styles"
)

// Options configures the console model.
type Options struct {
	Prompt  string
	Clock   bool
	Backend string // shown in the status bar
	Theme   *styles.Theme
	Now     func() time.Time
}

// Model is the Bubble Tea model of the console.
type Model struct {
	sess     *terminal.Session
	recorder *terminal.Recorder
	theme    *styles.Theme
	keys     KeyMap

	input    textinput.Model
	viewport viewport.Model
	header   *components.Header
	status   *components.StatusBar

	showClock bool
	now       func() time.Time

	width  int
	height int
	ready  bool
}

// New creates the console for sess. The session's listener is replaced.
func New(sess *terminal.Session, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Prompt == "" {
		opts.Prompt = terminal.DefaultPrompt
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	rec := &terminal.Recorder{}
	sess.SetListener(rec.Listen)

	input := textinput.New()
	input.Prompt = opts.Prompt
	input.PromptStyle = opts.Theme.Prompt
	input.TextStyle = opts.Theme.Input
	input.Focus()

	header := components.NewHeader(opts.Theme)
	if opts.Clock {
		header.SetClock(clock.Format(opts.Now()))
	}

	status := components.NewStatusBar(opts.Theme)
	status.Backend = opts.Backend

	m := Model{
		sess:      sess,
		recorder:  rec,
		theme:     opts.Theme,
		keys:      DefaultKeyMap(),
		input:     input,
		viewport:  viewport.New(80, 20),
		header:    header,
		status:    status,
		showClock: opts.Clock,
		now:       opts.Now,
	}
	m.sync()
	return m
}

// Init starts the cursor blink and the clock.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.showClock {
		cmds = append(cmds, clockTick())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case ClockTickMsg:
		m.header.SetClock(clock.Format(msg.Time))
		return m, clockTick()

	case StoreChangedMsg:
		m.sess.ReloadBookmarks()
		m.status.SetNotice("Store changed on disk, bookmarks reloaded")
		m.sync()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.status.SetWidth(msg.Width)

	// Layout: header + viewport + input line + status bar.
	const inputHeight, statusHeight = 1, 1
	vh := msg.Height - m.header.Height() - inputHeight - statusHeight
	if vh < 1 {
		vh = 1
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vh

	inputWidth := msg.Width - len([]rune(m.input.Prompt)) - 1
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.ready = true
	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var k terminal.Key
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		k = terminal.KeyEnter
	case key.Matches(msg, m.keys.Previous):
		k = terminal.KeyUp
	case key.Matches(msg, m.keys.Next):
		k = terminal.KeyDown
	case key.Matches(msg, m.keys.Complete):
		k = terminal.KeyTab
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	m.status.SetNotice("")
	m.sess.HandleKey(k, m.input.Value())
	m.sync()
	return m, nil
}

// sync copies session state into the widgets after a key was handled.
func (m *Model) sync() {
	for _, ev := range m.recorder.Drain() {
		if ev.Kind == terminal.EventOpen {
			m.status.SetNotice("Opened " + ev.URL)
		}
	}

	m.input.SetValue(m.sess.Input())
	m.input.CursorEnd()

	hist := m.sess.History()
	m.status.SetCounts(len(m.sess.Bookmarks().Entries()), hist.Len())
	if hist.Browsing() {
		m.status.SetRecall(hist.Cursor() + 1)
	} else {
		m.status.SetRecall(0)
	}

	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(components.RenderLines(m.theme, m.sess.Scrollback().Lines(), m.viewport.Width))
	m.viewport.GotoBottom()
}

// Input returns the current command line.
func (m Model) Input() string { return m.input.Value() }

// Session returns the underlying terminal session.
func (m Model) Session() *terminal.Session { return m.sess }

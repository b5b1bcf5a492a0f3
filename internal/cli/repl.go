// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - line-mode terminal on top of liner.
//
// The REPL is the fallback when stdout is not a TTY and the explicit
// `eterminal repl` mode. liner supplies arrow-key history and tab completion;
// the session still records and persists every submission itself.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/peterh/liner"

	"github.com/emadadel4/Eterminal/internal/render"
	"github.com/emadadel4/Eterminal/internal/terminal"
)

// LineReader is the subset of *liner.State the REPL needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// REPL reads lines and feeds them to a terminal session.
type REPL struct {
	sess    *terminal.Session
	reader  LineReader
	out     io.Writer
	output  *termenv.Output
	profile termenv.Profile
	prompt  string
}

// NewREPL wires sess output to out using profile for colour.
func NewREPL(sess *terminal.Session, reader LineReader, out io.Writer, profile termenv.Profile, prompt string) *REPL {
	if prompt == "" {
		prompt = terminal.DefaultPrompt
	}
	r := &REPL{
		sess:    sess,
		reader:  reader,
		out:     out,
		output:  termenv.NewOutput(out, termenv.WithProfile(profile)),
		profile: profile,
		prompt:  prompt,
	}
	sess.SetListener(r.handleEvent)
	return r
}

// NewLinerReader creates a liner state with completion from sess and its
// history seeded from the store.
func NewLinerReader(sess *terminal.Session) *liner.State {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(sess.Completer().CompleteLine)
	for _, entry := range sess.History().Entries() {
		line.AppendHistory(entry)
	}
	return line
}

// Run loops until EOF, Ctrl+C or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	r.banner()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := r.reader.Prompt(r.prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			r.reader.AppendHistory(input)
		}
		r.sess.Interpret(input)
	}
}

// Close releases the line reader and restores the terminal mode.
func (r *REPL) Close() error {
	return r.reader.Close()
}

func (r *REPL) banner() {
	title := "eterminal " + Version
	hint := "Type 'help' to list commands. Ctrl+D exits."
	if r.profile != termenv.Ascii {
		title = TitleStyle.Render(title)
		hint = DimStyle.Render(hint)
	}
	fmt.Fprintln(r.out, title)
	fmt.Fprintln(r.out, hint)
}

func (r *REPL) handleEvent(ev terminal.Event) {
	switch ev.Kind {
	case terminal.EventAppend:
		fmt.Fprintln(r.out, render.ANSI(ev.Line, r.profile))
	case terminal.EventClear:
		if r.profile != termenv.Ascii {
			r.output.ClearScreen()
		}
	}
}

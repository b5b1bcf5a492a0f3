// eterminal - a command line for your start page, in the terminal and the browser.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/emadadel4/Eterminal/internal/browser"
	"github.com/emadadel4/Eterminal/internal/cli"
	"github.com/emadadel4/Eterminal/internal/config"
	"github.com/emadadel4/Eterminal/internal/logging"
	"github.com/emadadel4/Eterminal/internal/server"
	"github.com/emadadel4/Eterminal/internal/storage"
	"github.com/emadadel4/Eterminal/internal/terminal"
	"github.com/emadadel4/Eterminal/internal/ui/console"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// storeWatchDebounce collapses bursts of store writes into one reload.
const storeWatchDebounce = 300 * time.Millisecond

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n\n", cli.ErrorStyle.Render("Error:"), err)
		cli.PrintUsage(os.Stderr)
		os.Exit(cli.ExitCode(err))
	}

	switch cmd {
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
	case cli.CmdConfig:
		err = cli.HandleConfig(args, os.Stdout)
	default:
		err = run(cmd, args)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cli.ErrorStyle.Render("Error:"), err)
		os.Exit(cli.ExitCode(err))
	}
}

// =============================================================================
// RUN
// =============================================================================

// app carries what every front end needs.
type app struct {
	cfg     *config.Config
	records *storage.Records
	log     *zap.Logger
}

func run(cmd cli.Command, args cli.Args) error {
	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}

	// The full-screen UI needs a terminal on both ends.
	if cmd == cli.CmdTUI && !cli.Interactive() {
		cmd = cli.CmdREPL
	}
	cli.SetColorProfile(cli.ColorProfile(cfg.UI.Color))

	log := logging.Must(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cmd == cli.CmdServe,
	})
	defer func() { _ = log.Sync() }()

	storePath, err := cfg.StorePath()
	if err != nil {
		return err
	}
	kv, err := storage.Open(cfg.Store.Backend, storePath)
	if err != nil {
		return &cli.StoreError{Backend: cfg.Store.Backend, Err: err}
	}
	defer kv.Close()
	log.Debug("STORE_OPEN", zap.String("backend", cfg.Store.Backend), zap.String("path", storePath))

	a := &app{
		cfg:     cfg,
		records: storage.NewRecords(kv, cfg.Bookmarks.Defaults, log),
		log:     log,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case cli.CmdServe:
		return a.serve(ctx)
	case cli.CmdREPL:
		return a.repl(ctx)
	default:
		return a.tui(ctx)
	}
}

func (a *app) newSession() *terminal.Session {
	return terminal.New(terminal.Options{
		Records:   a.records,
		SearchURL: a.cfg.Search.URL,
		Opener:    browser.System{},
		MaxLines:  a.cfg.UI.MaxLines,
		Logger:    a.log,
	})
}

// =============================================================================
// FRONT ENDS
// =============================================================================

// tui runs the Bubble Tea console.
func (a *app) tui(ctx context.Context) error {
	sess := a.newSession()
	m := console.New(sess, console.Options{
		Prompt:  a.cfg.UI.Prompt,
		Clock:   a.cfg.UI.Clock,
		Backend: a.cfg.Store.Backend,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Mouse wheel scrolls the output
	)

	// Another eterminal (or an editor) may change the store file.
	if fkv, ok := a.records.KV().(*storage.FileKV); ok {
		if err := fkv.Watch(ctx, storeWatchDebounce, func() { p.Send(console.StoreChangedMsg{}) }); err != nil {
			a.log.Warn("STORE_WATCH_FAILED", zap.Error(err))
		}
	}

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run terminal UI: %w", err)
	}
	return nil
}

// repl runs the line prompt.
func (a *app) repl(ctx context.Context) error {
	sess := a.newSession()
	profile := cli.ColorProfile(a.cfg.UI.Color)

	repl := cli.NewREPL(sess, cli.NewLinerReader(sess), os.Stdout, profile, a.cfg.UI.Prompt)
	defer repl.Close()
	return repl.Run(ctx)
}

// serve runs the browser terminal until interrupted.
func (a *app) serve(ctx context.Context) error {
	srv := server.New(server.Options{
		Listen:         a.cfg.Server.Listen,
		Records:        a.records,
		SearchURL:      a.cfg.Search.URL,
		Prompt:         a.cfg.UI.Prompt,
		MaxLines:       a.cfg.UI.MaxLines,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		KeysPerSecond:  a.cfg.Server.KeysPerSecond,
		KeyBurst:       a.cfg.Server.KeyBurst,
		Version:        Version,
		Logger:         a.log,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := time.Duration(a.cfg.Server.ShutdownTimeoutSecs) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console provides the full-screen Bubble Tea front end of eterminal.
//
// The model owns a terminal.Session and mirrors its display events: the
// viewport shows the scrollback, the text input is the command line and the
// header carries the 12-hour clock. Enter, Up, Down and Tab are handed to
// the session; everything else edits the input locally.
//
// Messages from outside the program loop (for example a store file changed
// by another process) arrive through tea.Program.Send:
//
//	p := tea.NewProgram(console.New(sess, opts), tea.WithAltScreen())
//	if err := kv.Watch(ctx, time.Second, func() { p.Send(console.StoreChangedMsg{}) }); err != nil {
//		log.Warn("STORE_WATCH_FAILED", zap.Error(err))
//	}
package console

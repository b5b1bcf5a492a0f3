// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emadadel4/Eterminal/internal/clock"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ClockTickMsg refreshes the header clock.
type ClockTickMsg struct {
	Time time.Time
}

// StoreChangedMsg reports that the persistent store was modified outside
// this process; bookmarks are re-read.
type StoreChangedMsg struct{}

// clockTick schedules the next clock refresh.
func clockTick() tea.Cmd {
	return tea.Tick(clock.Interval, func(t time.Time) tea.Msg {
		return ClockTickMsg{Time: t}
	})
}

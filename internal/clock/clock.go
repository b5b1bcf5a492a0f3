// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clock formats the 12-hour clock label shown next to the prompt.
package clock

import (
	"context"
	"fmt"
	"time"
)

// Interval is how often the label is refreshed.
const Interval = time.Second

// Format renders t as "hh:mm AM" / "hh:mm PM". Midnight and noon are 12.
func Format(t time.Time) string {
	hour := t.Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%02d:%02d %s", hour, t.Minute(), suffix)
}

// Run calls fn with the current label immediately and then on every tick
// until ctx is done.
func Run(ctx context.Context, interval time.Duration, fn func(label string)) {
	fn(Format(time.Now()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(Format(now))
		}
	}
}

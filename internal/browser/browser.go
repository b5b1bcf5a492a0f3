// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser opens URLs in the user's default browser.
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ErrUnsupportedScheme is returned for anything other than http and https.
var ErrUnsupportedScheme = errors.New("only http and https URLs can be opened")

// Opener opens URLs.
type Opener interface {
	Open(rawURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(rawURL string) error

// Open calls f.
func (f OpenerFunc) Open(rawURL string) error { return f(rawURL) }

// System opens URLs with the platform launcher. GOOS defaults to
// runtime.GOOS; Start defaults to (*exec.Cmd).Start.
type System struct {
	GOOS  string
	Start func(cmd *exec.Cmd) error
}

// Open validates rawURL and hands it to xdg-open, open or rundll32. It does
// not wait for the browser.
func (s System) Open(rawURL string) error {
	if err := Validate(rawURL); err != nil {
		return err
	}

	cmd, err := command(s.goos(), rawURL)
	if err != nil {
		return err
	}

	start := s.Start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return fmt.Errorf("failed to open %s: %w", rawURL, err)
	}
	return nil
}

func (s System) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

func command(goos, rawURL string) (*exec.Cmd, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Validate rejects URLs the launcher should never see. Stored bookmarks are
// free text, so a "file:" or "javascript:" value must not reach the OS.
func Validate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}
	return nil
}

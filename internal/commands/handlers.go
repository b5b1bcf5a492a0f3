// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultSearchURL is the search template used when none is configured.
const DefaultSearchURL = "https://duckduckgo.com/?t=ffab&q={query}"

// Fixed user-facing messages. Tests and the browser page key off the marker
// phrases ("Unknown command", "No URL found", "No custom commands found").
const (
	MsgUnknownCommand = "❌ Unknown command. Type 'help' to see the list of available commands."
	MsgNoURL          = `❌ No URL found. Make sure you've added it, Type "mycommands" to see url list`
	MsgNoBookmarks    = "No custom commands found."
	UsageOpen         = "Usage: open [keyword]"
	UsageNewURL       = "Usage: newurl [keyword] [url]"
	UsageSearch       = "Usage: search [query] - Please provide a search term."
)

const aboutText = "Eterminal - a command line in your start page\n" +
	"Type 'help' to list the commands, Tab completes, arrow keys walk the history.\n" +
	"Source: https://github.com/emadadel4/Eterminal\n" +
	"Issues: https://github.com/emadadel4/Eterminal/issues"

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// Builtins returns the built-in commands in definition order. The order is
// also the completion order.
func Builtins() []*Command {
	return []*Command{
		{Name: "about", Description: "Show information about this terminal", Usage: "about", Handler: handleAbout},
		{Name: "help", Description: "Show this help message", Usage: "help", Handler: handleHelp},
		{Name: "clear", Description: "Clear the terminal", Usage: "clear", Handler: handleClear},
		{Name: "cls", Description: "Clear the terminal", Usage: "cls", Handler: handleClear},
		{Name: "print", Description: "Display the text", Usage: "print [text]", Handler: handlePrint},
		{Name: "open", Description: "Open the specified URL", Usage: "open [keyword]", Handler: handleOpen},
		{Name: "newurl", Description: "Add a new URL mapping", Usage: "newurl [keyword] [url]", Handler: handleNewURL},
		{Name: "mycommands", Description: "Show all stored commands", Usage: "mycommands", Handler: handleMyCommands},
		{Name: "search", Description: "Search DuckDuckGo for the query", Usage: "search [query]", Handler: handleSearch},
	}
}

func handleAbout(env *Env, args []string) Result {
	return Text(aboutText)
}

func handleHelp(env *Env, args []string) Result {
	var sb strings.Builder
	sb.WriteString("Available commands:")

	cmds := Builtins()
	if env != nil && env.Registry != nil {
		cmds = env.Registry.Visible()
	}
	for _, cmd := range cmds {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		sb.WriteString("\n")
		sb.WriteString(usage)
		sb.WriteString(" - ")
		sb.WriteString(cmd.Description)
	}
	return Text("%s", sb.String())
}

func handleClear(env *Env, args []string) Result {
	return Silent(ClearEffect())
}

func handlePrint(env *Env, args []string) Result {
	res := Info("%s", strings.Join(args, " "))
	res.Render = true
	return res
}

func handleOpen(env *Env, args []string) Result {
	if len(args) == 0 {
		return Info(UsageOpen)
	}
	keyword := strings.ToLower(args[0])

	url, ok := env.Bookmarks.Lookup(keyword)
	if !ok || url == "" {
		return Error(MsgNoURL)
	}
	return Info("🌐 Opening %s...", url).With(OpenEffect(url))
}

func handleNewURL(env *Env, args []string) Result {
	if len(args) < 2 {
		return Text(UsageNewURL)
	}
	keyword := strings.ToLower(args[0])
	url := strings.Join(args[1:], " ")

	if err := env.Bookmarks.Set(keyword, url); err != nil {
		return Warning("Added new url command: %s -> %s (not saved: %v)", keyword, url, err)
	}
	return Text("Added new url command: %s -> %s", keyword, url)
}

func handleMyCommands(env *Env, args []string) Result {
	entries := env.Bookmarks.Entries()
	if len(entries) == 0 {
		return Text(MsgNoBookmarks)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + " -> " + entries[k]
	}
	return Text("%s", strings.Join(lines, "\n"))
}

func handleSearch(env *Env, args []string) Result {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return Text(UsageSearch)
	}
	url := SearchURL(env.SearchURL, query)
	return Text("Searching for: %s", query).With(OpenEffect(url))
}

// =============================================================================
// SEARCH URL
// =============================================================================

// SearchURL fills template with the encoded query. "{query}" marks the spot;
// a template without it gets the query appended.
func SearchURL(template, query string) string {
	if template == "" {
		template = DefaultSearchURL
	}
	encoded := EncodeURIComponent(query)
	if strings.Contains(template, "{query}") {
		return strings.ReplaceAll(template, "{query}", encoded)
	}
	return template + encoded
}

// EncodeURIComponent percent-encodes s exactly like the JavaScript function
// of the same name: everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is
// escaped byte by byte, so spaces become %20 rather than "+".
func EncodeURIComponent(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "%%%02X", c)
	}
	return sb.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

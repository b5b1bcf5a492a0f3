// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParseResult contains the result of parsing one input line.
type ParseResult struct {
	// RawInput is the trimmed, NFC-normalized line
	RawInput string

	// CommandName is the first token, lowercased
	CommandName string

	// Args are the remaining tokens with their case preserved
	Args []string

	// Command is the matched command (nil if not found)
	Command *Command
}

// Found reports whether the command name resolved to a registered command.
func (p ParseResult) Found() bool { return p.Command != nil }

// Empty reports whether the line had no tokens at all.
func (p ParseResult) Empty() bool { return p.CommandName == "" }

// Parser splits input lines and resolves the command name.
type Parser struct {
	registry *Registry
}

// NewParser creates a parser over registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse splits input on whitespace; the first token names the command.
func (p *Parser) Parse(input string) ParseResult {
	input = NormalizeLine(input)
	result := ParseResult{RawInput: input}

	tokens := Tokenize(input)
	if len(tokens) == 0 {
		return result
	}

	result.CommandName = strings.ToLower(tokens[0])
	result.Args = tokens[1:]
	if cmd, ok := p.registry.Lookup(result.CommandName); ok {
		result.Command = cmd
	}
	return result
}

// Tokenize splits a line on runs of whitespace.
func Tokenize(input string) []string {
	return strings.Fields(input)
}

// NormalizeLine trims the line and converts it to NFC so that visually equal
// input (e.g. a composed vs decomposed "é") produces equal keywords.
func NormalizeLine(input string) string {
	return norm.NFC.String(strings.TrimSpace(input))
}

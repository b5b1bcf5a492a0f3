// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - exit codes and error classification.
package cli

import (
	"errors"

	"github.com/emadadel4/Eterminal/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitStoreError   = 4
)

// StoreError wraps a failure to open the persistent store.
type StoreError struct {
	Backend string
	Err     error
}

func (e *StoreError) Error() string {
	return "open " + e.Backend + " store: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var cfgErr config.ValidateErrors
	var store *StoreError
	switch {
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.As(err, &cfgErr):
		return ExitConfigError
	case errors.As(err, &store):
		return ExitStoreError
	default:
		return ExitGeneralError
	}
}

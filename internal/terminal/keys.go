// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

// =============================================================================
// KEYS
// =============================================================================

// Key is a key the terminal reacts to. Every other key edits the input field
// and never reaches the session.
type Key int

const (
	KeyNone Key = iota
	KeyEnter
	KeyUp
	KeyDown
	KeyTab
)

// Key names as reported by the DOM's KeyboardEvent.key.
var keyNames = map[string]Key{
	"Enter":     KeyEnter,
	"ArrowUp":   KeyUp,
	"ArrowDown": KeyDown,
	"Tab":       KeyTab,
}

// ParseKey maps a DOM key name to a Key; unknown names are KeyNone.
func ParseKey(name string) Key {
	return keyNames[name]
}

// String returns the DOM key name.
func (k Key) String() string {
	for name, key := range keyNames {
		if key == k {
			return name
		}
	}
	return "None"
}

// =============================================================================
// ACTIONS
// =============================================================================

// Action is what a key press asks the session to do.
type Action int

const (
	ActionNone Action = iota
	ActionSubmit
	ActionRecallPrevious
	ActionRecallNext
	ActionComplete
)

// ActionFor maps a key to its action.
func ActionFor(k Key) Action {
	switch k {
	case KeyEnter:
		return ActionSubmit
	case KeyUp:
		return ActionRecallPrevious
	case KeyDown:
		return ActionRecallNext
	case KeyTab:
		return ActionComplete
	default:
		return ActionNone
	}
}

func (a Action) String() string {
	switch a {
	case ActionSubmit:
		return "submit"
	case ActionRecallPrevious:
		return "recall_previous"
	case ActionRecallNext:
		return "recall_next"
	case ActionComplete:
		return "complete"
	default:
		return "none"
	}
}

package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNoChoices is returned when a select field has nothing to pick from.
	ErrNoChoices = errors.New("tui: select field has no choices")
)

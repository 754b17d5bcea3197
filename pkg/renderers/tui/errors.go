package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrReadOnly is returned after a read-only view has been printed; only
	// concept properties are edited in the terminal.
	ErrReadOnly = errors.New("tui: view is read-only")
	// ErrNothingToSelect is returned by Navigate when the store is empty or a
	// level has no entries.
	ErrNothingToSelect = errors.New("tui: nothing to select")
)

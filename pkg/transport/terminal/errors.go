package terminal

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("terminal: aborted")
	// ErrNoFactory is returned by Run without a form factory.
	ErrNoFactory = errors.New("terminal: form factory is required")
)

package pipeline

import "errors"

var (
	// ErrEmptyResult means a stage produced zero rows for the chosen
	// window or meter. Recoverable: the UI asks for another time range.
	ErrEmptyResult = errors.New("no data for this window")

	// ErrNoColumns means the caller selected zero columns. Recoverable:
	// the UI prompts for a column selection.
	ErrNoColumns = errors.New("no columns selected")
)

// Package apperr defines the error classes a report run can fail with.
package apperr

import "errors"

var (
	// ErrLoad marks an input document that is missing, unreadable or malformed,
	// or a graph that could not be published to the query engine.
	ErrLoad = errors.New("load error")
	// ErrQuery marks a query the engine rejected or failed to evaluate.
	ErrQuery = errors.New("query error")
	// ErrWrite marks a report destination that could not be opened or written.
	ErrWrite = errors.New("write error")
)

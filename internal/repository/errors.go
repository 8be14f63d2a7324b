package repository

import "errors"

var (
	// ErrNotFound is returned when the targeted row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadRequest is returned when a request is malformed before it
	// reaches the store: an empty update patch, a duplicate company
	// handle, or inverted filter bounds.
	ErrBadRequest = errors.New("bad request")
)

package store

import "errors"

var (
	// ErrNotFound indicates the record was not found.
	ErrNotFound = errors.New("store: not found")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")

	// ErrReadOnly indicates a write inside a View transaction.
	ErrReadOnly = errors.New("store: read-only transaction")

	// ErrClosed indicates use of a closed store.
	ErrClosed = errors.New("store: closed")
)

package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist or is soft-deleted.
	ErrNotFound = errors.New("repository: not found")
)

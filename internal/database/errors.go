package database

import "errors"

// Sentinel errors shared by the storage and service layers. Callers
// match them with errors.Is; authorization failures are reported as
// ErrNotFound so that non-participants cannot probe for existence.
var (
	ErrNotFound          = errors.New("not found")
	ErrNotAvailable      = errors.New("not available")
	ErrInvalidInterval   = errors.New("invalid booking interval")
	ErrInvalidPagination = errors.New("invalid pagination")
	ErrUnknownState      = errors.New("unknown state")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrConflict          = errors.New("already exists")
)

package library

import "errors"

var (
	// ErrNotFound indicates the requested entity doesn't exist. Lookups
	// by URL or ordinal return it as a normal outcome, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key, check, or boundary
	// validation violation.
	ErrConstraint = errors.New("constraint violation")
)

package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist or is
	// soft-deleted. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint (e.g. a profile with an email already in use).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for the specific violation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a transaction fails to commit or
	// an operation inside one fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors.

	ErrDeckNotFound    = fmt.Errorf("%w: deck", ErrNotFound)
	ErrCardNotFound    = fmt.Errorf("%w: card", ErrNotFound)
	ErrTagNotFound     = fmt.Errorf("%w: tag", ErrNotFound)
	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)

	// ErrEmailExists indicates a profile with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrTagNameExists indicates the owner already has a tag with that name.
	ErrTagNameExists = fmt.Errorf("%w: tag name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

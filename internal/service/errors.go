// Package service implements the application use-cases on top of the
// domain model and the store interfaces.
package service

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist or is
	// not visible to the caller. Foreign-owned resources deliberately
	// surface as not found rather than forbidden, so a caller cannot
	// probe for the existence of another owner's data.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates the operation collides with existing state,
	// such as a duplicate email or tag name.
	ErrConflict = errors.New("resource conflict")
)

// internal/app/content/errs/errs.go

// Package errs defines the outcome taxonomy shared by every content
// family. Engines return these sentinels (or wraps of them) across module
// boundaries so the API layer can translate them without inspecting
// family internals. Match with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound: the id does not resolve to a live entity or request.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: role level insufficient, or wrong actor.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidTiming: the timing/persistence invariant is violated.
	ErrInvalidTiming = errors.New("invalid timing")
	// ErrMissingField: a required scalar field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrDanglingReference: a referenced member post does not exist.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrExpired: the contest's end time has passed.
	ErrExpired = errors.New("expired")
	// ErrNotYetEnded: the contest's end time is still in the future.
	ErrNotYetEnded = errors.New("not yet ended")
	// ErrMalformedID: the identifier has no recognizable segment structure.
	ErrMalformedID = errors.New("malformed id")
	// ErrDuplicate: an entity with the same natural key already exists.
	ErrDuplicate = errors.New("already exists")
	// ErrStorage: the backing store failed; the operation was aborted.
	ErrStorage = errors.New("storage failure")
)

// Storage wraps a store-level failure. Store errors are never retried by
// the core; they abort the current operation.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrModelUnavailable is returned when the embedding model cannot be
	// located or loaded. Fatal to the instance; reported at load time.
	ErrModelUnavailable = errors.New("embedding model unavailable")

	// ErrIndexUnavailable is returned when the vector database does not
	// exist or cannot be opened. Fatal to the instance.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrRecordNotFound is returned when an index hit has no matching
	// stored work. This breaks the one-to-one index/store invariant and is
	// always surfaced, never skipped.
	ErrRecordNotFound = errors.New("work record not found")

	// ErrInvalidQuery is returned for empty or whitespace-only query text,
	// before any model invocation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match the index dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// RecordNotFoundError carries the identifier of the missing work so a
// desynchronized index can be diagnosed. Unwraps to ErrRecordNotFound.
type RecordNotFoundError struct {
	ID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("work record not found: %s", e.ID)
}

func (e *RecordNotFoundError) Unwrap() error { return ErrRecordNotFound }

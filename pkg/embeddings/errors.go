package embeddings

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every *LookupError.
	ErrNotFound = errors.New("term not found")
	// ErrOutOfRange is matched by every *RangeError.
	ErrOutOfRange = errors.New("index out of range")
	// ErrDimensionMismatch is returned when vectors of one store disagree
	// on dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// LookupError reports a term that is neither stored nor resolvable through
// backoff. It concerns one query only.
type LookupError struct {
	Term   string
	Reason string
}

func (e *LookupError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("embeddings: %q not found", e.Term)
	}
	return fmt.Sprintf("embeddings: %q not found: %s", e.Term, e.Reason)
}

// Is reports whether target is ErrNotFound.
func (e *LookupError) Is(target error) bool { return target == ErrNotFound }

// RangeError reports an index outside [0, Len).
type RangeError struct {
	Index int
	Len   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("embeddings: index %d out of range [0, %d)", e.Index, e.Len)
}

// Is reports whether target is ErrOutOfRange.
func (e *RangeError) Is(target error) bool { return target == ErrOutOfRange }

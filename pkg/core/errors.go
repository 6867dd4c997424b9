package core

import "errors"

// =============================================================================
// Error kinds
// =============================================================================

// Kernel error kinds. Components wrap these with context using
// fmt.Errorf("%w: ...") so callers can match them with errors.Is.
var (
	// ErrDegenerateVector reports a zero-magnitude vector, or collinear and
	// parallel inputs to a basis construction.
	ErrDegenerateVector = errors.New("degenerate vector")

	// ErrDuplicateName reports an id or title collision. It is returned
	// before any state is mutated.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNotFound reports an operation on an unknown id or title.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation reports an operation the current state forbids:
	// touching the Global coordinate system, deleting the active plane,
	// undo with an empty history, redo at the head of history.
	ErrInvalidOperation = errors.New("invalid operation")
)

// Kind returns a short label for the kernel error kind wrapped by err,
// or "error" when err wraps none of them.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrDegenerateVector):
		return "degenerate_vector"
	case errors.Is(err, ErrDuplicateName):
		return "duplicate_name"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidOperation):
		return "invalid_operation"
	default:
		return "error"
	}
}

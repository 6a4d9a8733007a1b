package pathctx

import "errors"

// Sentinel errors for path-context extraction.
var (
	// ErrValidation is returned when extraction options are out of range.
	// No work is performed when options fail validation.
	ErrValidation = errors.New("invalid extraction options")

	// ErrTree is returned when the input is not a tree: a node is reachable
	// through more than one parent, the structure contains a cycle, or a
	// child is nil. It is fatal for that input only.
	ErrTree = errors.New("input is not a valid tree")

	// ErrInvariant signals that an ancestor query did not converge.
	// It cannot happen on a tree built by Extend and indicates a defect.
	ErrInvariant = errors.New("ancestor query did not converge")
)

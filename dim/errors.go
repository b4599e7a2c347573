package dim

import "errors"

// Sentinel errors for the dim package. Callers branch on these with
// errors.Is; message text is never relied upon.
var (
	// ErrMissingVariable indicates Substitute was called with a binding
	// that does not cover every free variable of the expression.
	ErrMissingVariable = errors.New("dim: binding is missing a variable")

	// ErrNotConstant indicates ToUsize was called on a Dim that still
	// carries free variables after substitution.
	ErrNotConstant = errors.New("dim: value is not a constant")
)

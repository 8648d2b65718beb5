package dpf

import "fmt"

// Kind categorizes a *Error the way spec.md section 7 requires, without
// tying the category to any particular transport. Callers branch on Kind
// rather than matching error strings.
type Kind int

const (
	// InvalidArgument covers parameter-list rule violations, out-of-domain
	// alpha/beta, wrong-length beta vectors, over-sized or non-extending
	// prefixes, element-width mismatches, and incompatible key layouts.
	InvalidArgument Kind = iota
	// Unimplemented covers element bit sizes outside the supported set.
	Unimplemented
	// Internal covers failures reported by an underlying cryptographic
	// primitive.
	Internal
	// FailedPrecondition covers EvaluateNext being called after the last
	// hierarchy has already been consumed.
	FailedPrecondition
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case Unimplemented:
		return "Unimplemented"
	case Internal:
		return "Internal"
	case FailedPrecondition:
		return "FailedPrecondition"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by every validating entry point in this
// package. It wraps an underlying cause the same way the teacher wraps
// errors with fmt.Errorf("...: %w", err) throughout rpc_client.go and
// pir_server_driver.go, so errors.Is/errors.As still see through it.
type Error struct {
	kind Kind
	err  error
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{kind: kind, err: fmt.Errorf(format, args...)}
}

// Kind reports the error's category.
func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	return fmt.Sprintf("dpf: %s: %v", e.kind, e.err)
}

// Unwrap lets errors.Is/errors.As see through to the underlying cause.
func (e *Error) Unwrap() error { return e.err }

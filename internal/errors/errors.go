package errors

import "fmt"

// Code classifies a specpress error.
type Code string

const (
	ErrNotFound    Code = "NOT_FOUND"    // input or digest file missing
	ErrValidation  Code = "VALIDATION"   // unsupported format, malformed input, invariant violation
	ErrPermission  Code = "PERMISSION"   // output path not writable
	ErrIO          Code = "IO"           // generic read/write failure
	ErrBelowTarget Code = "BELOW_TARGET" // digest did not reach the minimum reduction floor
	ErrDependency  Code = "DEPENDENCY"   // token encoder or other collaborator unavailable
	ErrInternal    Code = "INTERNAL"     // unexpected failure
)

// Process exit codes, one per taxonomy kind.
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitValidation  = 2
	ExitBelowTarget = 3
	ExitIO          = 4
	ExitDependency  = 5
)

// Error is a structured error with a taxonomy code, exit code, and optional details.
type Error struct {
	Code     Code
	ExitCode int
	Message  string
	Details  map[string]any
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// NewNotFound creates an error for a missing file.
func NewNotFound(path string) *Error {
	return &Error{
		Code:     ErrNotFound,
		ExitCode: ExitGeneral,
		Message:  fmt.Sprintf("file not found: %s", path),
		Details:  map[string]any{"path": path},
	}
}

// NewValidation creates an error for invalid input or a violated invariant.
func NewValidation(msg string) *Error {
	return &Error{
		Code:     ErrValidation,
		ExitCode: ExitValidation,
		Message:  msg,
	}
}

// NewValidationCause creates a validation error that preserves the underlying
// parser or encoder error as context.
func NewValidationCause(msg string, cause error) *Error {
	return &Error{
		Code:     ErrValidation,
		ExitCode: ExitValidation,
		Message:  fmt.Sprintf("%s: %v", msg, cause),
		cause:    cause,
	}
}

// NewPermission creates an error for an unwritable path.
func NewPermission(path string, cause error) *Error {
	return &Error{
		Code:     ErrPermission,
		ExitCode: ExitIO,
		Message:  fmt.Sprintf("cannot write to %s: %v", path, cause),
		Details:  map[string]any{"path": path},
		cause:    cause,
	}
}

// NewIO creates an error for a read/write failure not classified as Permission.
func NewIO(msg string, cause error) *Error {
	return &Error{
		Code:     ErrIO,
		ExitCode: ExitIO,
		Message:  fmt.Sprintf("%s: %v", msg, cause),
		cause:    cause,
	}
}

// NewBelowTarget creates an error for a digest that missed the minimum
// reduction floor. The digest itself is still valid; the caller decides
// whether this is fatal.
func NewBelowTarget(ratio, floor float64) *Error {
	return &Error{
		Code:     ErrBelowTarget,
		ExitCode: ExitBelowTarget,
		Message:  fmt.Sprintf("compression ratio %.1f%% is below the %.0f%% minimum", ratio*100, floor*100),
		Details:  map[string]any{"ratio": ratio, "floor": floor},
	}
}

// NewDependency creates an error for an unavailable collaborator.
func NewDependency(msg string, cause error) *Error {
	return &Error{
		Code:     ErrDependency,
		ExitCode: ExitDependency,
		Message:  fmt.Sprintf("%s: %v", msg, cause),
		cause:    cause,
	}
}

// NewInternal creates an error for unexpected failures.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:     ErrInternal,
		ExitCode: ExitGeneral,
		Message:  msg,
		cause:    err,
	}
}

// Is checks if an error is a specpress Error with the given code.
func Is(err error, code Code) bool {
	if sErr, ok := err.(*Error); ok {
		return sErr.Code == code
	}
	return false
}

// ExitCodeFor maps any error to a process exit code. Non-taxonomy errors
// map to the general error code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if sErr, ok := err.(*Error); ok {
		return sErr.ExitCode
	}
	return ExitGeneral
}

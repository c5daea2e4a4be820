package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// EvalError reports a rejected argument to one of the evaluators.
// Op names the operation, Field the offending argument.
type EvalError struct {
	Op    string
	Field string
	Err   error
}

func (e *EvalError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Invalid builds an EvalError wrapping ErrInvalidInput.
func Invalid(op, field, format string, args ...any) *EvalError {
	return &EvalError{
		Op:    op,
		Field: field,
		Err:   fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...)),
	}
}

// Error kinds reported by the evaluators
var (
	ErrInvalidInput     = fmt.Errorf("invalid input")
	ErrInsufficientData = fmt.Errorf("insufficient data")
)

// Parse error types
var (
	ErrInvalidFieldCount = fmt.Errorf("invalid field count")
	ErrInvalidCount      = fmt.Errorf("invalid count")
	ErrInvalidQuantity   = fmt.Errorf("invalid quantity")
	ErrEmptyName         = fmt.Errorf("empty name")
)

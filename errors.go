package pager

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSort    = errors.New("invalid sort")
	ErrInvalidFilter  = errors.New("invalid filter")
	ErrInvalidRequest = errors.New("invalid pagination request")
)

// InputError is a client input problem tied to a single request parameter.
// Transports should answer it with a 400-class status and never retry.
type InputError struct {
	// Field is the offending request parameter, e.g. "sortBy" or "priceMin".
	Field   string
	Message string
	Err     error
}

func newInputError(kind error, field string, format string, args ...any) *InputError {
	return &InputError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Err:     kind,
	}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Err, e.Field, e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// IsInputError reports whether err (or anything it wraps) is an *InputError.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

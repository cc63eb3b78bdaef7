// Package apperr holds the error kinds shared between the pricing domain
// and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound marks lookups of products, categories or rules that matched
// no row. Repos return it wrapped with the resource name.
var ErrNotFound = errors.New("not found")

func NotFound(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrNotFound)
}

// ValidationError rejects bad input before any write happens.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

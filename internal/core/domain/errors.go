package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned when retrieval runs before the index is fit.
	ErrNotFitted = errors.New("index not fitted")
	// ErrEmptyCollection is returned when a fit is attempted on zero documents.
	ErrEmptyCollection = errors.New("empty document collection")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

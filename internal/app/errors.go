package app

import (
	"errors"
	"fmt"
)

var ErrInvalidInput = errors.New("invalid input")

// InputError wraps whatever made a request unusable, usually
// validator.ValidationErrors. It matches ErrInvalidInput.
type InputError struct {
	Err error
}

func invalid(format string, args ...interface{}) error {
	return &InputError{Err: fmt.Errorf(format, args...)}
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

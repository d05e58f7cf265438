package tracker

import (
	"errors"
	"fmt"
)

// ErrNotNumeric is returned when a put or call reading has no leading integer.
var ErrNotNumeric = errors.New("please enter valid numeric values")

// InputError names the field that failed to parse.
type InputError struct {
	Field string
	Value string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s value %q: %v", e.Field, e.Value, ErrNotNumeric)
}

func (e *InputError) Unwrap() error {
	return ErrNotNumeric
}

package simulation

import (
	"errors"
	"fmt"
)

// ErrNoVariantSelected is returned by BuildPayload before any SelectVariant call.
var ErrNoVariantSelected = errors.New("no simulation variant selected")

// UnknownVariantError reports a variant name outside the registry.
type UnknownVariantError struct {
	Name string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown simulation variant %q", e.Name)
}

// UnknownFieldError reports a field name outside the shared set.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown configuration field %q", e.Name)
}

// InvalidFieldValueError reports raw input that cannot be stored in a field.
// The builder keeps the previous value when it returns this error.
type InvalidFieldValueError struct {
	Field  Field
	Raw    string
	Reason string
}

func (e *InvalidFieldValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %s", e.Raw, e.Field, e.Reason)
}

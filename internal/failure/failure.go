// Package failure classifies errors so the boundary layer can tell
// caller-fixable input problems apart from configuration and network failures.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks caller-fixable errors: bad or unsupported input.
	ErrValidation = errors.New("validation error")
	// ErrConfig marks errors caused by invalid configuration. Never retried.
	ErrConfig = errors.New("configuration error")
	// ErrTransient marks network and upstream failures.
	ErrTransient = errors.New("transient error")
)

// Error is a classified error. Kind is one of the sentinels above.
type Error struct {
	Kind     error
	Input    string
	Expected string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Input != "" {
		fmt.Fprintf(&b, " (input %q", e.Input)
		if e.Expected != "" {
			fmt.Fprintf(&b, ", expected %s", e.Expected)
		}
		b.WriteString(")")
	} else if e.Expected != "" {
		fmt.Fprintf(&b, " (expected %s)", e.Expected)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Validation reports bad caller input. input names the offending value and
// expected describes the accepted shape.
func Validation(input, expected, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Input: input, Expected: expected, Msg: fmt.Sprintf(format, args...)}
}

// Config reports an invalid configuration value.
func Config(input string, err error, format string, args ...any) error {
	return &Error{Kind: ErrConfig, Input: input, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Transient wraps a network or upstream failure. Already classified errors and
// context cancellation are returned unchanged.
func Transient(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{Kind: ErrTransient, Msg: fmt.Sprintf(format, args...), Err: err}
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConfig(err error) bool     { return errors.Is(err, ErrConfig) }
func IsTransient(err error) bool  { return errors.Is(err, ErrTransient) }

package models

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedAccount = errors.New("malformed account")
	ErrUnknownLayout    = errors.New("unknown account layout")
)

// MalformedAccountError reports an account buffer shorter than its layout requires.
type MalformedAccountError struct {
	Kind    AccountKind
	Version LayoutVersion
	MinLen  int
	Actual  int
}

func (e *MalformedAccountError) Error() string {
	return fmt.Sprintf("%s %s account too small: need %d bytes, got %d", e.Kind, e.Version, e.MinLen, e.Actual)
}

func (e *MalformedAccountError) Unwrap() error {
	return ErrMalformedAccount
}

package sth

import (
	"errors"
	"fmt"
)

var (
	ErrStatus     = errors.New("unexpected status")
	ErrMissingKey = errors.New("missing key")
	ErrMalformed  = errors.New("malformed response")
)

// StatusError reports a response other than 200 OK.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("error accessing %s: status %d", e.URL, e.Code)
}

func (e *StatusError) Unwrap() error {
	return ErrStatus
}

// KeyError reports a key missing from the response envelope.
type KeyError struct {
	Path string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("key error: %q not found", e.Path)
}

func (e *KeyError) Unwrap() error {
	return ErrMissingKey
}

func NewMalformedError(reason string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrMalformed, reason)
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformed, reason, err)
}

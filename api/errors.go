package api

import (
	"errors"
	"fmt"
)

// ErrProtocolMismatch means the switch answered, but not with the pages this
// client knows how to drive.
var ErrProtocolMismatch = errors.New("unexpected response from switch")

// NetworkError wraps transport failures. They are never retried here.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// AuthError carries the login status code reported by the switch.
type AuthError struct {
	Code   int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Reason)
}

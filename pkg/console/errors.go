package console

import (
	"errors"
	"fmt"
)

// ErrUnknownKey is returned when an action names a key the catalog does not
// declare.
var ErrUnknownKey = errors.New("unknown setting key")

// ValidationError rejects user input that does not parse as the key's
// declared type. Nothing is committed when it is returned.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Key, e.Reason)
}

// PersistenceError reports a failed store write. The in-memory catalog has
// been rolled back to its pre-commit state when it is returned.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Package common defines the failure kinds shared by repositories, services
// and presentation shells. Callers should use errors.Is to match the kinds.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrStorage reports an unavailable or corrupt durable medium.
	ErrStorage = errors.New("storage failure")

	// ErrRemote reports a failed fetch from the live source.
	ErrRemote = errors.New("remote failure")

	// ErrSync reports a failed sync pipeline. It wraps ErrRemote or ErrStorage.
	ErrSync = errors.New("sync failure")

	// ErrCache reports a failed clear or marker read. It wraps ErrStorage or a
	// parse error.
	ErrCache = errors.New("cache failure")
)

// Error attaches a failure kind and the failed operation to a cause.
// It unwraps to both the kind and the cause, so a sync failure caused by a
// remote failure matches ErrSync and ErrRemote.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap classifies err as kind. A nil err stays nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the outermost kind attached to err, or nil when err carries
// none.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

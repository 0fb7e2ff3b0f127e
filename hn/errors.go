package hn

import (
	"context"
	"errors"
	"fmt"
)

// FetchError is returned when a request could not be completed or its body
// could not be decoded. It marks the failure as transient.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransient reports whether err carries a FetchError that is worth retrying.
// Cancellation and deadline errors from the caller's context never are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var fe *FetchError
	return errors.As(err, &fe)
}

// Package errors defines the single error kind surfaced by update operations.
//
// Lower-level failures (HTTP, I/O, JSON, missing headers) are wrapped into an
// UpdateError at the point of origin. Hard marks a failure of the system
// (network, disk, malformed response). A soft error is a user cancellation.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is matched by every soft UpdateError created by Cancelled.
	ErrCancelled = errors.New("cancelled by user")

	// ErrUnknown is used as the message when a hard failure has no description.
	ErrUnknown = errors.New("unknown GitHub error")
)

// UpdateError is the error returned by the updater, downloader and GitHub client.
type UpdateError struct {
	// Message is a human-readable (possibly translated) description.
	Message string

	// Hard is false only for user-initiated cancellation.
	Hard bool

	// Err is the underlying cause, if any.
	Err error
}

func (e *UpdateError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = ErrUnknown.Error()
	}
	// Soft errors only ever carry ErrCancelled, which adds nothing to the message.
	if e.Err == nil || !e.Hard {
		return msg
	}

	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Hard wraps cause as a hard UpdateError with the given message.
func Hard(message string, cause error) *UpdateError {
	return &UpdateError{Message: message, Hard: true, Err: cause}
}

// Cancelled returns the soft UpdateError used when the user aborts an operation.
func Cancelled(message string) *UpdateError {
	return &UpdateError{Message: message, Hard: false, Err: ErrCancelled}
}

// IsHard reports whether err contains a hard UpdateError.
// Errors that are not UpdateErrors are treated as hard.
func IsHard(err error) bool {
	if err == nil {
		return false
	}

	var ue *UpdateError
	if errors.As(err, &ue) {
		return ue.Hard
	}

	return true
}

// IsCancelled reports whether err is a user cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

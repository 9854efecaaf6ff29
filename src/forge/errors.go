package forge

import (
	"errors"
	"fmt"
)

var (
	// ErrIgnoredEvent marks webhook deliveries that carry no runnable
	// branch reference. Not a failure; the delivery is simply dropped.
	ErrIgnoredEvent = errors.New("ignored event")

	// ErrAuthFailed marks rejected forge API credentials.
	ErrAuthFailed = errors.New("authentication failed")
)

// UserError wraps errors with user-friendly messages for CLI surfaces.
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// WrapError converts API errors to user-friendly messages.
func WrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrAuthFailed) {
		return &UserError{
			Message: "Authentication failed",
			Hint:    "Check that KILN_FORGE_TOKEN is valid and has repo:status permission.",
			Err:     err,
		}
	}

	return err
}

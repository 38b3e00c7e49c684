package rtc

import (
	"errors"
	"fmt"
)

// Sentinel errors for session operations.
var (
	ErrNoSession         = errors.New("no active session")
	ErrSessionClosed     = errors.New("session is closed")
	ErrNoStream          = errors.New("no local stream")
	ErrPermissionMissing = errors.New("capture permission missing")
	ErrChannelNotOpen    = errors.New("data channel not open")
)

// SessionError wraps a failure with the operation that produced it.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }

func opErr(op string, err error) *SessionError {
	return &SessionError{Op: op, Err: err}
}

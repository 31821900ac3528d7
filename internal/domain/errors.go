package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUpstream
)

// Error carries the failure taxonomy across the service boundary.
// Validation, not-found and conflict errors are safe to show to callers;
// upstream and internal errors keep their cause for logs only.
type Error struct {
	Kind      ErrorKind
	Message   string
	BookingID int64
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewNotFound(bookingID int64) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("booking %d not found", bookingID), BookingID: bookingID}
}

func NewConflict(msg string, current BookingStatus, action BookingAction) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf("%s (status=%s, action=%s)", msg, current, action)}
}

func NewUpstream(msg string, cause error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: cause}
}

func NewInternal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// KindOf classifies any error; wrapped causes of unknown shape count as
// internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

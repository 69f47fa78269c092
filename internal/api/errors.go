package api

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// KindTransport: the request never completed or the response could not be decoded.
	KindTransport ErrorKind = iota
	// KindApplication: the server answered with success=false.
	KindApplication
)

// Error is returned by every Client operation that fails.
type Error struct {
	Kind ErrorKind
	// Op is the human phrase for the operation, e.g. "create roadmap".
	Op string
	// Message is the server-provided error text (KindApplication only).
	Message string
	// Status is the HTTP status code when a response was received.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Kind == KindApplication && e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Notice is the text shown to the user for this failure.
func (e *Error) Notice() string {
	if e == nil {
		return ""
	}
	if e.Kind == KindApplication && e.Message != "" {
		return e.Message
	}
	return "Failed to " + e.Op
}

// Notice returns the user-facing text for err. Errors that did not originate in the client
// fall back to "Failed to <op>".
func Notice(err error, op string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Notice()
	}
	return "Failed to " + op
}

func transportErr(op string, status int, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Status: status, Err: err}
}

func applicationErr(op string, status int, msg string) *Error {
	return &Error{Kind: KindApplication, Op: op, Status: status, Message: msg}
}

package rdf

import (
	"errors"
	"fmt"
)

// Status is a return code for operations that can fail.
// Every Status except Success and Failure is also an error sentinel
// usable with errors.Is.
type Status int

const (
	Success Status = iota
	Failure
	ErrUnknown
	ErrBadSyntax
	ErrBadArg
	ErrBadIter
	ErrNotFound
	ErrIDClash
	ErrBadCurie
	ErrInternal
	ErrOverflow
	ErrNoData
	ErrBadText
	ErrBadWrite
	ErrBadCall
	ErrBadURI
	ErrOutOfRange

	statusCount
)

var statusMessages = [statusCount]string{
	Success:       "Success",
	Failure:       "Non-fatal failure",
	ErrUnknown:    "Unknown error",
	ErrBadSyntax:  "Invalid syntax",
	ErrBadArg:     "Invalid argument",
	ErrBadIter:    "Invalid iterator",
	ErrNotFound:   "Not found",
	ErrIDClash:    "Blank node ID clash",
	ErrBadCurie:   "Invalid CURIE",
	ErrInternal:   "Internal error",
	ErrOverflow:   "Stack overflow",
	ErrNoData:     "Unexpected end of input",
	ErrBadText:    "Invalid text encoding",
	ErrBadWrite:   "Error writing to file",
	ErrBadCall:    "Invalid call",
	ErrBadURI:     "Invalid or unresolved URI",
	ErrOutOfRange: "Value out of range",
}

// ErrNegativeStatus is returned by Strerror for negative codes
var ErrNegativeStatus = errors.New("negative status code")

// Strerror returns a human-readable message for a status code.
// Unknown codes map to "Unknown error"; negative codes are an error.
func Strerror(code int) (string, error) {
	if code < 0 {
		return "", fmt.Errorf("status %d: %w", code, ErrNegativeStatus)
	}
	if code >= int(statusCount) {
		return statusMessages[ErrUnknown], nil
	}
	return statusMessages[code], nil
}

func (s Status) Error() string {
	msg, err := Strerror(int(s))
	if err != nil {
		return err.Error()
	}
	return msg
}

func (s Status) String() string {
	return s.Error()
}

// StatusOf returns the Status wrapped by err, Success for nil,
// or ErrUnknown if err carries no Status.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}

	var st Status
	if errors.As(err, &st) {
		return st
	}
	return ErrUnknown
}

// CursorError is an error tied to a position in a document
type CursorError struct {
	Status Status
	Cursor Cursor
	Msg    string
}

func (e *CursorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cursor, e.Msg)
}

func (e *CursorError) Unwrap() error {
	return e.Status
}

// SyntaxError is a CursorError for malformed input
type SyntaxError = CursorError

func newCursorError(st Status, cur Cursor, format string, args ...any) *CursorError {
	return &CursorError{Status: st, Cursor: cur, Msg: fmt.Sprintf(format, args...)}
}

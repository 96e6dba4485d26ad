// Package fserr defines the error kinds returned by the storage tree and the
// favorites store, and maps them to HTTP statuses and user-facing messages.
package fserr

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrPathEscape   = errors.New("path escapes storage root")
	ErrIO           = errors.New("storage i/o failure")
	ErrValidation   = errors.New("invalid input")
	ErrCorruptState = errors.New("corrupt state")
)

// Error wraps a failure with the operation and the relative path it concerned.
type Error struct {
	Op   string // operation that failed, e.g. "rename"
	Path string // path relative to the storage root
	Kind error  // one of the Err* kinds
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the error kind.
func (e *Error) Is(target error) bool { return target == e.Kind }

// NotFound reports a missing entry.
func NotFound(op, path string) error {
	return &Error{Op: op, Path: path, Kind: ErrNotFound}
}

// Conflict reports that the target entry already exists.
func Conflict(op, path string) error {
	return &Error{Op: op, Path: path, Kind: ErrConflict}
}

// PathEscape reports a path that resolves outside the storage root.
func PathEscape(op, path string) error {
	return &Error{Op: op, Path: path, Kind: ErrPathEscape}
}

// IO wraps an underlying filesystem failure.
func IO(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrIO, Err: err}
}

// Validation reports rejected input. The message is shown to the user.
func Validation(op, path, message string) error {
	return &Error{Op: op, Path: path, Kind: ErrValidation, Err: errors.New(message)}
}

// CorruptState reports an unreadable persisted document.
func CorruptState(op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: ErrCorruptState, Err: err}
}

// FromOS classifies an os/io error: missing paths become NotFound,
// existing paths Conflict, and everything else IO.
func FromOS(op, path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Op: op, Path: path, Kind: ErrNotFound, Err: err}
	case errors.Is(err, fs.ErrExist):
		return &Error{Op: op, Path: path, Kind: ErrConflict, Err: err}
	}
	return IO(op, path, err)
}

// Kind returns the kind of err, or nil if err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrConflict, ErrPathEscape, ErrValidation, ErrCorruptState, ErrIO} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// HTTPStatus maps err to a response status.
func HTTPStatus(err error) int {
	switch Kind(err) {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrPathEscape, ErrValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns a message suitable for showing to the user.
// Internal details of IO failures are not exposed.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if !errors.As(err, &fe) {
		return "Something went wrong. Please try again."
	}
	name := fe.Path
	if name == "" {
		name = "the root folder"
	}
	switch fe.Kind {
	case ErrNotFound:
		return fmt.Sprintf("%s was not found.", name)
	case ErrConflict:
		return fmt.Sprintf("%s already exists.", name)
	case ErrPathEscape:
		return "That path is outside the storage area."
	case ErrValidation:
		if fe.Err != nil {
			return fe.Err.Error()
		}
		return "The request was not valid."
	case ErrCorruptState:
		return "Saved state could not be read and was reset."
	}
	return fmt.Sprintf("Could not %s %s. Please try again.", fe.Op, name)
}

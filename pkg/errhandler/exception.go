// exception.go defines the error values reported for raised errors, shutdown
// errors and recovered panics.

package errhandler

import (
	"errors"
	"fmt"
)

// Level is the severity of a raised error.
type Level int

const (
	// LevelDebug is diagnostic noise that was still routed to the handler.
	LevelDebug Level = iota

	// LevelInfo is an informational notice.
	LevelInfo

	// LevelWarning is a non-fatal issue that may need attention.
	LevelWarning

	// LevelError is a recoverable error that caused an operation to fail.
	LevelError

	// LevelFatal is an unrecoverable error.
	LevelFatal
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

var (
	// ErrNilException is returned when HandleException is called without an error.
	ErrNilException = errors.New("errhandler: nil exception")

	// ErrEventDropped is returned by hubs when the backend accepted the call
	// but did not produce an event (no client bound, sampled out, filtered).
	ErrEventDropped = errors.New("errhandler: event dropped by hub")
)

// Frame is one entry of a caller-supplied backtrace.
type Frame struct {
	Function string
	File     string
	Line     int
}

// ErrorException wraps a raised error or shutdown error so it can be
// submitted like any other error value.
type ErrorException struct {
	// Message is the human-readable error message.
	Message string

	// Code is always 0 for raised errors; kept for parity with other exceptions.
	Code int

	// Severity is the level the error was raised with.
	Severity Level

	// File and Line locate where the error was raised.
	File string
	Line int

	// Fatal is set when the error terminated the current operation.
	Fatal bool

	// Backtrace is optional, innermost frame first.
	Backtrace []Frame
}

// NewErrorException creates an ErrorException with code 0.
func NewErrorException(level Level, message, file string, line int) *ErrorException {
	return &ErrorException{
		Message:  message,
		Severity: level,
		File:     file,
		Line:     line,
	}
}

func (e *ErrorException) Error() string {
	return e.Message
}

// Location returns "file:line", or an empty string when no file is known.
func (e *ErrorException) Location() string {
	if e.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// PanicError is the error reported for a recovered panic.
type PanicError struct {
	Cause any
	Stack []byte
}

func (err *PanicError) Error() string {
	s := "caught panic"

	if cause := err.Cause; cause != nil {
		s = fmt.Sprintf("%s: %v", s, cause)
	}

	return s
}

// Unwrap returns the panic value when it was an error.
func (err *PanicError) Unwrap() error {
	if cause, ok := err.Cause.(error); ok {
		return cause
	}
	return nil
}

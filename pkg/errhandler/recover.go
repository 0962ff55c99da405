// recover.go provides the Recover helper for reporting panics.
// Use this in HTTP handlers, goroutines, or other code that must not crash.

package errhandler

import (
	"context"
	"runtime/debug"
)

// Recover captures a panic, reports it through the reporter, and returns the
// recovered value. It does NOT re-panic.
//
// The error ID is taken from ctx (see WithErrorID) or generated.
//
// Use in defer:
//
//	func handler(ctx context.Context) {
//	    defer errhandler.Recover(ctx, reporter)
//	    // code that might panic
//	}
func Recover(ctx context.Context, reporter *Reporter) any {
	r := recover()
	if r == nil {
		return nil
	}

	if reporter == nil {
		return r
	}

	errorID, ok := ErrorIDFromContext(ctx)
	if !ok {
		errorID = NewErrorID()
	}

	// Reporter logs capture failures; the caller is already unwinding.
	_ = reporter.HandleException(&PanicError{Cause: r, Stack: debug.Stack()}, errorID)

	return r
}

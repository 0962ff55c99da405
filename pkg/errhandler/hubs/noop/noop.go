// Package noop provides a hub that discards all reports.
// Useful for testing and for disabling error reporting.
package noop

import "github.com/errhub/sentry-errorhandler/pkg/errhandler"

// noopHub discards all reports.
type noopHub struct{}

// NewNoopHub creates a hub that discards all reports.
func NewNoopHub() errhandler.Hub {
	return &noopHub{}
}

// ConfigureScope calls fn with a scope that ignores every mutation.
func (h *noopHub) ConfigureScope(fn func(scope errhandler.Scope)) {
	fn(noopScope{})
}

// CaptureException discards err and returns an empty event ID.
func (h *noopHub) CaptureException(err error) (string, error) {
	return "", nil
}

type noopScope struct{}

func (noopScope) Clear()                                      {}
func (noopScope) SetTag(key, value string)                    {}
func (noopScope) SetContext(key string, value map[string]any) {}
func (noopScope) SetExtra(key string, value any)              {}
func (noopScope) SetUser(user map[string]any)                 {}

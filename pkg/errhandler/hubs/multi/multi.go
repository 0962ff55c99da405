// Package multi provides a hub that fans out to multiple hubs.
// All hubs receive every scope mutation and every capture; errors are aggregated.
package multi

import (
	"errors"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler"
)

// multiHub fans out to multiple hubs.
type multiHub struct {
	hubs []errhandler.Hub
}

// NewMultiHub creates a hub that reports to all of hubs.
func NewMultiHub(hubs ...errhandler.Hub) errhandler.Hub {
	return &multiHub{
		hubs: hubs,
	}
}

// ConfigureScope opens the scope of every hub and calls fn once with a
// scope that forwards each mutation to all of them.
func (h *multiHub) ConfigureScope(fn func(scope errhandler.Scope)) {
	h.configure(0, make(multiScope, 0, len(h.hubs)), fn)
}

func (h *multiHub) configure(i int, scopes multiScope, fn func(scope errhandler.Scope)) {
	if i == len(h.hubs) {
		fn(scopes)
		return
	}
	h.hubs[i].ConfigureScope(func(scope errhandler.Scope) {
		h.configure(i+1, append(scopes, scope), fn)
	})
}

// CaptureException sends err to all hubs, collecting any errors.
// All hubs are called even if some return errors. The first event ID is returned.
func (h *multiHub) CaptureException(err error) (string, error) {
	var eventID string
	var errs []error
	for _, hub := range h.hubs {
		id, captureErr := hub.CaptureException(err)
		if captureErr != nil {
			errs = append(errs, captureErr)
			continue
		}
		if eventID == "" {
			eventID = id
		}
	}
	return eventID, errors.Join(errs...)
}

// multiScope forwards every call to each scope.
type multiScope []errhandler.Scope

func (m multiScope) Clear() {
	for _, s := range m {
		s.Clear()
	}
}

func (m multiScope) SetTag(key, value string) {
	for _, s := range m {
		s.SetTag(key, value)
	}
}

func (m multiScope) SetContext(key string, value map[string]any) {
	for _, s := range m {
		s.SetContext(key, value)
	}
}

func (m multiScope) SetExtra(key string, value any) {
	for _, s := range m {
		s.SetExtra(key, value)
	}
}

func (m multiScope) SetUser(user map[string]any) {
	for _, s := range m {
		s.SetUser(user)
	}
}

// hub.go defines the contract with the reporting client.

package errhandler

// Scope is the per-report container that is merged into the outgoing event.
type Scope interface {
	Clear()
	SetTag(key, value string)
	SetContext(key string, value map[string]any)
	SetExtra(key string, value any)
	SetUser(user map[string]any)
}

// Hub is the reporting client that owns the scope and submits events.
type Hub interface {
	// ConfigureScope calls fn with the scope that the next capture will use.
	// All mutations made by fn are visible to the following CaptureException.
	ConfigureScope(fn func(scope Scope))

	// CaptureException submits err and returns the backend event ID.
	CaptureException(err error) (string, error)
}

// HubAccessor returns the hub to report to. It is called once per report.
type HubAccessor interface {
	Hub() Hub
}

// HubAccessorFunc adapts an ordinary function to a HubAccessor.
type HubAccessorFunc func() Hub

// Hub calls fn().
func (fn HubAccessorFunc) Hub() Hub {
	return fn()
}

// StaticHub returns an accessor that always hands out h.
func StaticHub(h Hub) HubAccessor {
	return HubAccessorFunc(func() Hub { return h })
}

// noopHub is an internal hub used when no accessor is configured.
type noopHub struct{}

func (noopHub) ConfigureScope(fn func(scope Scope)) {
	fn(noopScope{})
}

func (noopHub) CaptureException(err error) (string, error) {
	return "", nil
}

type noopScope struct{}

func (noopScope) Clear()                                  {}
func (noopScope) SetTag(key, value string)                {}
func (noopScope) SetContext(key string, v map[string]any) {}
func (noopScope) SetExtra(key string, value any)          {}
func (noopScope) SetUser(user map[string]any)             {}

// Package sentryhub adapts github.com/getsentry/sentry-go to errhandler.Hub.
package sentryhub

import (
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler"
)

// Config holds Sentry SDK configuration.
type Config struct {
	DSN         string
	Environment string
	Release     string
	Debug       bool
	SampleRate  float64
}

// DefaultConfig returns default Sentry configuration.
func DefaultConfig() Config {
	return Config{
		Environment: "development",
		SampleRate:  1.0,
	}
}

// Init initializes the process-wide Sentry SDK. It is a no-op without a DSN.
func Init(cfg Config) error {
	if cfg.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		Debug:            cfg.Debug,
		SampleRate:       cfg.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	return nil
}

// Flush waits until buffered events are sent or the timeout expires.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// AccessorOption configures an Accessor.
type AccessorOption func(*Accessor)

// WithClonePerReport makes every Hub call return a clone of the underlying
// hub so concurrent reports never share a scope.
func WithClonePerReport() AccessorOption {
	return func(a *Accessor) {
		a.clone = true
	}
}

// Accessor hands out errhandler.Hub values backed by a Sentry hub.
type Accessor struct {
	current func() *sentry.Hub
	clone   bool
}

// CurrentHub returns an accessor over the SDK's process-wide current hub.
// The hub is looked up on every report, so a later sentry.Init is honored.
func CurrentHub(opts ...AccessorOption) *Accessor {
	return newAccessor(sentry.CurrentHub, opts)
}

// NewAccessor returns an accessor that always reports to hub.
func NewAccessor(hub *sentry.Hub, opts ...AccessorOption) *Accessor {
	return newAccessor(func() *sentry.Hub { return hub }, opts)
}

func newAccessor(current func() *sentry.Hub, opts []AccessorOption) *Accessor {
	a := &Accessor{current: current}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hub returns the hub for the next report.
func (a *Accessor) Hub() errhandler.Hub {
	hub := a.current()
	if hub == nil {
		return nil
	}
	if a.clone {
		hub = hub.Clone()
	}
	return &Hub{hub: hub}
}

// Hub wraps a *sentry.Hub.
type Hub struct {
	hub *sentry.Hub
}

// Wrap adapts hub directly, without an accessor.
func Wrap(hub *sentry.Hub) *Hub {
	return &Hub{hub: hub}
}

// Sentry returns the wrapped hub.
func (h *Hub) Sentry() *sentry.Hub {
	return h.hub
}

// ConfigureScope applies fn to the hub's current scope.
func (h *Hub) ConfigureScope(fn func(scope errhandler.Scope)) {
	h.hub.ConfigureScope(func(scope *sentry.Scope) {
		fn(&Scope{scope: scope})
	})
}

// CaptureException submits err. Raised errors get their level and backtrace
// applied to the event.
func (h *Hub) CaptureException(err error) (string, error) {
	var eventID *sentry.EventID

	var exception *errhandler.ErrorException
	if errors.As(err, &exception) {
		h.hub.WithScope(func(scope *sentry.Scope) {
			scope.SetLevel(levelFor(exception))
			if len(exception.Backtrace) > 0 {
				scope.AddEventProcessor(backtraceProcessor(exception.Backtrace))
			}
			eventID = h.hub.CaptureException(err)
		})
	} else {
		eventID = h.hub.CaptureException(err)
	}

	if eventID == nil {
		return "", errhandler.ErrEventDropped
	}
	return string(*eventID), nil
}

// Scope wraps a *sentry.Scope.
type Scope struct {
	scope *sentry.Scope
}

func (s *Scope) Clear() {
	s.scope.Clear()
}

func (s *Scope) SetTag(key, value string) {
	s.scope.SetTag(key, value)
}

func (s *Scope) SetContext(key string, value map[string]any) {
	s.scope.SetContext(key, sentry.Context(value))
}

func (s *Scope) SetExtra(key string, value any) {
	s.scope.SetExtra(key, value)
}

func (s *Scope) SetUser(user map[string]any) {
	s.scope.SetUser(userFromMap(user))
}

// userFromMap maps well-known identity keys onto sentry.User and keeps the
// rest as string data.
func userFromMap(m map[string]any) sentry.User {
	var user sentry.User
	for key, value := range m {
		s := fmt.Sprint(value)
		switch key {
		case "id":
			user.ID = s
		case "email":
			user.Email = s
		case "ip_address":
			user.IPAddress = s
		case "username":
			user.Username = s
		case "name":
			user.Name = s
		default:
			if user.Data == nil {
				user.Data = make(map[string]string)
			}
			user.Data[key] = s
		}
	}
	return user
}

func levelFor(exception *errhandler.ErrorException) sentry.Level {
	if exception.Fatal {
		return sentry.LevelFatal
	}

	switch exception.Severity {
	case errhandler.LevelDebug:
		return sentry.LevelDebug
	case errhandler.LevelInfo:
		return sentry.LevelInfo
	case errhandler.LevelWarning:
		return sentry.LevelWarning
	case errhandler.LevelFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}

// backtraceProcessor replaces the top-level exception stack trace with the
// caller-supplied frames. Sentry lists frames outermost first.
func backtraceProcessor(backtrace []errhandler.Frame) sentry.EventProcessor {
	frames := make([]sentry.Frame, 0, len(backtrace))
	for i := len(backtrace) - 1; i >= 0; i-- {
		f := backtrace[i]
		frames = append(frames, sentry.Frame{
			Function: f.Function,
			Filename: f.File,
			AbsPath:  f.File,
			Lineno:   f.Line,
			InApp:    true,
		})
	}

	return func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
		if len(event.Exception) == 0 {
			return event
		}
		// e.Exception[len-1] is the outermost error of the chain.
		event.Exception[len(event.Exception)-1].Stacktrace = &sentry.Stacktrace{Frames: frames}
		return event
	}
}

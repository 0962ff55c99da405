// Package logging provides a hub that writes reports to a zap logger instead
// of sending them anywhere. Useful for development and debugging.
package logging

import (
	"errors"
	"maps"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/errhub/sentry-errorhandler/pkg/errhandler"
)

// Option configures the logging hub.
type Option func(*config)

type config struct {
	verbose bool
}

// WithVerbose enables backtraces and panic stacks in the output.
func WithVerbose() Option {
	return func(c *config) {
		c.verbose = true
	}
}

// Hub logs captured errors together with the scope they were captured with.
// All reports share one scope: concurrent calls do not race, but callers must
// serialize reports or a capture may be logged with another report's scope.
type Hub struct {
	logger  *zap.Logger
	verbose bool

	mu    sync.Mutex
	scope *Scope
}

// New creates a hub writing to logger.
func New(logger *zap.Logger, opts ...Option) *Hub {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Hub{
		logger:  logger,
		verbose: cfg.verbose,
		scope:   NewScope(),
	}
}

// ConfigureScope applies fn to the shared scope.
func (h *Hub) ConfigureScope(fn func(scope errhandler.Scope)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(h.scope)
}

// CaptureException logs err with the current scope and returns a new event ID.
func (h *Hub) CaptureException(err error) (string, error) {
	h.mu.Lock()
	snapshot := h.scope.Snapshot()
	h.mu.Unlock()

	eventID := strings.ReplaceAll(uuid.NewString(), "-", "")

	fields := []zap.Field{
		zap.String("event_id", eventID),
		zap.String("error_type", errhandler.TypeName(reflect.TypeOf(err))),
		zap.String("message", err.Error()),
		zap.String("fingerprint", errhandler.Fingerprint(err)),
	}
	if len(snapshot.Tags) > 0 {
		fields = append(fields, zap.Any("tags", snapshot.Tags))
	}
	if len(snapshot.User) > 0 {
		fields = append(fields, zap.Any("user", snapshot.User))
	}
	if len(snapshot.Contexts) > 0 {
		fields = append(fields, zap.Any("contexts", snapshot.Contexts))
	}
	if len(snapshot.Extras) > 0 {
		fields = append(fields, zap.Any("extras", snapshot.Extras))
	}

	level := zapcore.ErrorLevel

	var exception *errhandler.ErrorException
	var panicErr *errhandler.PanicError
	switch {
	case errors.As(err, &exception):
		level = levelFor(exception)
		fields = append(fields,
			zap.Stringer("severity", exception.Severity),
			zap.Bool("fatal", exception.Fatal),
		)
		if loc := exception.Location(); loc != "" {
			fields = append(fields, zap.String("location", loc))
		}
		if h.verbose && len(exception.Backtrace) > 0 {
			fields = append(fields, zap.Any("backtrace", exception.Backtrace))
		}
	case errors.As(err, &panicErr):
		if h.verbose && len(panicErr.Stack) > 0 {
			fields = append(fields, zap.ByteString("stack", panicErr.Stack))
		}
	}

	h.logger.Log(level, "error captured", fields...)

	return eventID, nil
}

// levelFor never returns a fatal zap level: logging a report must not exit.
func levelFor(exception *errhandler.ErrorException) zapcore.Level {
	if exception.Fatal {
		return zapcore.ErrorLevel
	}
	switch exception.Severity {
	case errhandler.LevelDebug:
		return zapcore.DebugLevel
	case errhandler.LevelInfo:
		return zapcore.InfoLevel
	case errhandler.LevelWarning:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Scope records scope mutations in memory.
type Scope struct {
	tags     map[string]string
	contexts map[string]map[string]any
	extras   map[string]any
	user     map[string]any
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	s := &Scope{}
	s.Clear()
	return s
}

// Snapshot is a copy of a scope's contents.
type Snapshot struct {
	Tags     map[string]string
	Contexts map[string]map[string]any
	Extras   map[string]any
	User     map[string]any
}

func (s *Scope) Clear() {
	s.tags = make(map[string]string)
	s.contexts = make(map[string]map[string]any)
	s.extras = make(map[string]any)
	s.user = nil
}

func (s *Scope) SetTag(key, value string) {
	s.tags[key] = value
}

func (s *Scope) SetContext(key string, value map[string]any) {
	s.contexts[key] = value
}

func (s *Scope) SetExtra(key string, value any) {
	s.extras[key] = value
}

func (s *Scope) SetUser(user map[string]any) {
	s.user = user
}

// Snapshot copies the recorded data.
func (s *Scope) Snapshot() Snapshot {
	return Snapshot{
		Tags:     maps.Clone(s.tags),
		Contexts: maps.Clone(s.contexts),
		Extras:   maps.Clone(s.extras),
		User:     maps.Clone(s.user),
	}
}

// context.go provides the contextual data attached to every report and
// utilities for propagating error IDs through context.Context.

package errhandler

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
)

// ContextProvider supplies the contextual data added to each report.
// Each method is called exactly once per report. Empty results mean
// "nothing to set".
type ContextProvider interface {
	User() map[string]any
	Tags() map[string]string
	Contexts() map[string]map[string]any
	Extras() map[string]any
}

// EmptyContext is a ContextProvider without any data.
type EmptyContext struct{}

func (EmptyContext) User() map[string]any                { return nil }
func (EmptyContext) Tags() map[string]string             { return nil }
func (EmptyContext) Contexts() map[string]map[string]any { return nil }
func (EmptyContext) Extras() map[string]any              { return nil }

// Store is a ContextProvider that applications fill in as they learn more
// about the current process or request. It is safe for concurrent use and
// hands out copies.
type Store struct {
	mu       sync.RWMutex
	user     map[string]any
	tags     map[string]string
	contexts map[string]map[string]any
	extras   map[string]any
}

// NewStore creates an empty context store.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// SetUser replaces the user identity.
func (s *Store) SetUser(user map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = maps.Clone(user)
}

// SetTag sets a single tag.
func (s *Store) SetTag(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[key] = value
}

// SetContext sets a named context.
func (s *Store) SetContext(key string, value map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[key] = maps.Clone(value)
}

// SetExtra sets a single extra value.
func (s *Store) SetExtra(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extras[key] = value
}

// Reset drops everything in the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.tags = make(map[string]string)
	s.contexts = make(map[string]map[string]any)
	s.extras = make(map[string]any)
}

func (s *Store) User() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.user)
}

func (s *Store) Tags() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.tags)
}

func (s *Store) Contexts() map[string]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]map[string]any, len(s.contexts))
	for k, v := range s.contexts {
		result[k] = maps.Clone(v)
	}
	return result
}

func (s *Store) Extras() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.extras)
}

type errorIDKey struct{}

// NewErrorID returns a fresh random error identifier.
func NewErrorID() string {
	return uuid.NewString()
}

// WithErrorID returns a context carrying the error ID to use for reports made
// on its behalf, typically the same ID written to the request log.
func WithErrorID(ctx context.Context, errorID string) context.Context {
	return context.WithValue(ctx, errorIDKey{}, errorID)
}

// ErrorIDFromContext extracts the error ID from context.
// Returns empty string and false if not set or empty.
func ErrorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(errorIDKey{}).(string)
	return id, ok && id != ""
}

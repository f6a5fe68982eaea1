// Where: internal/domain/topology/scope.go
// What: Explicit build context for one topology declaration.
// Why: Carry the stack id, pass-through context and clock without globals.
package topology

import (
	"errors"
	"maps"
	"strings"
	"time"
)

var errScopeIDRequired = errors.New("scope id is required")

// Scope is the context a topology is declared in. It is passed by
// reference to every declaration and never mutated by the builder.
type Scope struct {
	ID      string
	Context map[string]string
	Clock   func() time.Time
}

// ScopeOption customizes a Scope.
type ScopeOption func(*Scope)

// WithClock overrides the build-time clock.
func WithClock(clock func() time.Time) ScopeOption {
	return func(s *Scope) {
		if clock != nil {
			s.Clock = clock
		}
	}
}

// WithContext attaches pass-through context values.
func WithContext(values map[string]string) ScopeOption {
	return func(s *Scope) {
		for key, value := range values {
			s.Context[key] = value
		}
	}
}

// NewScope validates id and applies opts.
func NewScope(id string, opts ...ScopeOption) (*Scope, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, errScopeIDRequired
	}
	scope := &Scope{ID: trimmed, Context: map[string]string{}, Clock: time.Now}
	for _, opt := range opts {
		opt(scope)
	}
	return scope, nil
}

// Now reads the scope clock.
func (s *Scope) Now() time.Time {
	if s == nil || s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

// Path returns the construct path of a resource within the scope.
func (s *Scope) Path(id ResourceID) string {
	return s.ID + "/" + string(id)
}

// ContextValue returns a context value or fallback when unset.
func (s *Scope) ContextValue(key, fallback string) string {
	if value, ok := s.Context[key]; ok && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// ContextValues returns a copy of the pass-through context.
func (s *Scope) ContextValues() map[string]string {
	return maps.Clone(s.Context)
}

// Package view holds the pieces every screen shares: a lifetime scope that
// drops late results after teardown, and the route guard.
package view

import (
	"context"
	"sync"
)

// Scope is the lifetime of one mounted view.
type Scope struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	closed bool
	onDone []func()
}

// NewScope derives a scope from parent.
func NewScope(parent context.Context) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Live reports whether the view is still mounted.
func (s *Scope) Live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Update runs fn while holding the scope lock, only if the view is still
// mounted. It reports whether fn ran. Views funnel every state write that
// follows a network call through Update, so results arriving after Close
// are discarded.
func (s *Scope) Update(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	fn()
	return true
}

// Read runs fn under the scope lock regardless of liveness.
func (s *Scope) Read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// OnClose registers fn to run when the scope closes. If it is already
// closed fn runs immediately.
func (s *Scope) OnClose(fn func()) {
	s.mu.Lock()
	if !s.closed {
		s.onDone = append(s.onDone, fn)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn()
}

// Close tears the view down. Release hooks run in reverse registration
// order. Close is idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	hooks := s.onDone
	s.onDone = nil
	s.mu.Unlock()

	s.cancel()
	for i := len(hooks) - 1; i >= 0; i-- {
		hooks[i]()
	}
}

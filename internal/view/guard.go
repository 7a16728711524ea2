package view

import (
	"strings"

	"github.com/ashureev/castline/internal/session"
)

// LoginRoute is where unauthenticated visitors are sent.
const LoginRoute = "/login"

// Outcome is what the guard decided for a route.
type Outcome int

// Guard outcomes.
const (
	Allow Outcome = iota
	Redirect
	Loading
)

// Decision is the guard's answer for one navigation.
type Decision struct {
	Outcome Outcome
	To      string // set for Redirect
}

// StateSource reports the session lifecycle state.
type StateSource interface {
	State() session.State
}

// Guard decides whether a route may mount. Protected routes mount only with
// an authenticated session; while the session hydrates they show loading.
type Guard struct {
	sessions StateSource
	public   map[string]bool
}

// NewGuard returns a guard where publicRoutes bypass the session check.
func NewGuard(sessions StateSource, publicRoutes ...string) *Guard {
	pub := make(map[string]bool, len(publicRoutes))
	for _, r := range publicRoutes {
		pub[r] = true
	}
	return &Guard{sessions: sessions, public: pub}
}

// Check evaluates route. It never performs I/O.
func (g *Guard) Check(route string) Decision {
	if g.public[routeRoot(route)] {
		return Decision{Outcome: Allow}
	}
	switch g.sessions.State() {
	case session.Authenticated:
		return Decision{Outcome: Allow}
	case session.Hydrating:
		return Decision{Outcome: Loading}
	default:
		return Decision{Outcome: Redirect, To: LoginRoute}
	}
}

// routeRoot strips the query string.
func routeRoot(route string) string {
	if i := strings.IndexByte(route, '?'); i >= 0 {
		return route[:i]
	}
	return route
}

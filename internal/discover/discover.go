// Package discover holds the screens for finding members: the leaderboard
// and the member search.
package discover

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLeaderboardNotAuthenticated = "Not authenticated to view leaderboard."
	MsgLeaderboardFailed           = "Failed to load leaderboard."
	MsgSearchNotAuthenticated      = "You must be logged in to search."
	MsgSearchFailed                = "Failed to load search results. Please try again."
)

// API is the subset of the request client these screens use.
type API interface {
	Leaderboard(ctx context.Context, role string) ([]domain.LeaderboardEntry, error)
	SearchUsers(ctx context.Context, q domain.SearchQuery) ([]domain.User, error)
}

// Sessions exposes the current session.
type Sessions interface {
	Current() (domain.Session, bool)
}

type list[T any] struct {
	scope   *view.Scope
	loading bool
	err     string
	items   []T
}

func (l *list[T]) fail(msg string) {
	l.scope.Update(func() {
		l.loading = false
		l.err = msg
	})
}

func (l *list[T]) set(items []T) {
	l.scope.Update(func() {
		l.loading = false
		l.err = ""
		l.items = items
	})
}

// Items returns the current results.
func (l *list[T]) Items() []T {
	var out []T
	l.scope.Read(func() { out = slices.Clone(l.items) })
	return out
}

// Err returns the inline error.
func (l *list[T]) Err() string {
	var s string
	l.scope.Read(func() { s = l.err })
	return s
}

// Loading reports whether a fetch is in flight.
func (l *list[T]) Loading() bool {
	var b bool
	l.scope.Read(func() { b = l.loading })
	return b
}

// Close tears the view down.
func (l *list[T]) Close() { l.scope.Close() }

// Leaderboard ranks members by engagement, optionally within one role.
type Leaderboard struct {
	list[domain.LeaderboardEntry]
	api      API
	sessions Sessions
	logger   *slog.Logger
	role     string
}

// NewLeaderboard creates an unmounted leaderboard showing all roles.
func NewLeaderboard(parent context.Context, api API, sessions Sessions, logger *slog.Logger) *Leaderboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Leaderboard{
		list:     list[domain.LeaderboardEntry]{scope: view.NewScope(parent), loading: true},
		api:      api,
		sessions: sessions,
		logger:   logger,
		role:     domain.AllRoles,
	}
}

// Mount loads the ranking for the selected role.
func (l *Leaderboard) Mount(ctx context.Context) error {
	if _, ok := l.sessions.Current(); !ok {
		l.fail(MsgLeaderboardNotAuthenticated)
		return apiclient.ErrAuthRequired
	}
	entries, err := l.api.Leaderboard(ctx, l.Role())
	if err != nil {
		l.fail(apiclient.Report(l.logger, "load leaderboard", err, MsgLeaderboardFailed))
		return err
	}
	l.set(entries)
	return nil
}

// SelectRole changes the role filter and reloads.
func (l *Leaderboard) SelectRole(ctx context.Context, role string) error {
	if role == "" {
		role = domain.AllRoles
	}
	l.scope.Update(func() {
		l.role = role
		l.loading = true
	})
	return l.Mount(ctx)
}

// Role returns the selected role filter.
func (l *Leaderboard) Role() string {
	var r string
	l.scope.Read(func() { r = l.role })
	return r
}

// Search finds members by name, role and location.
type Search struct {
	list[domain.User]
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewSearch creates an unmounted search screen.
func NewSearch(parent context.Context, api API, sessions Sessions, logger *slog.Logger) *Search {
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		list:     list[domain.User]{scope: view.NewScope(parent)},
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// Run executes q. An empty query with no filter clears the results without
// a request.
func (s *Search) Run(ctx context.Context, q domain.SearchQuery) error {
	if _, ok := s.sessions.Current(); !ok {
		s.fail(MsgSearchNotAuthenticated)
		return apiclient.ErrAuthRequired
	}

	q.Query = strings.TrimSpace(q.Query)
	q.Location = strings.TrimSpace(q.Location)
	if q.Role == domain.AllRoles {
		q.Role = ""
	}
	if q.Query == "" && q.Role == "" && q.Location == "" {
		s.set(nil)
		return nil
	}

	s.scope.Update(func() { s.loading = true })
	users, err := s.api.SearchUsers(ctx, q)
	if err != nil {
		s.fail(apiclient.Report(s.logger, "search users", err, MsgSearchFailed))
		return err
	}
	s.set(users)
	return nil
}

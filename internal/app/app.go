// Package app wires the client together: configuration, the request
// client, the session store, the live channel and the screens reachable
// by route.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ashureev/castline/internal/account"
	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/casting"
	"github.com/ashureev/castline/internal/chat"
	"github.com/ashureev/castline/internal/config"
	"github.com/ashureev/castline/internal/discover"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/feed"
	"github.com/ashureev/castline/internal/groups"
	"github.com/ashureev/castline/internal/notify"
	"github.com/ashureev/castline/internal/profile"
	"github.com/ashureev/castline/internal/session"
	"github.com/ashureev/castline/internal/store"
	"github.com/ashureev/castline/internal/view"
)

// Routes.
const (
	RouteLogin         = view.LoginRoute
	RouteRegister      = "/register"
	RouteFeed          = "/feed"
	RouteNotifications = "/notifications"
	RouteMessages      = "/messages"
	RouteProfile       = "/profile/" // + user id
	RouteGroups        = "/groups"
	RouteCastingCalls  = "/casting-calls"
	RouteLeaderboard   = "/leaderboard"
	RouteSearch        = "/search"
	RouteSettings      = "/settings"
)

// ErrNotFound is returned by Navigate for an unknown route.
var ErrNotFound = errors.New("no such route")

// Screen is a mounted view.
type Screen interface {
	Close()
}

// App is one client process.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	storage  store.Storage
	sessions *session.Store
	client   *apiclient.Client
	guard    *view.Guard
	account  *account.Service
	dialHTTP *http.Client
}

// Option configures an App.
type Option func(*App)

// WithStorage replaces the SQLite session storage.
func WithStorage(s store.Storage) Option {
	return func(a *App) { a.storage = s }
}

// WithHTTPClient routes REST and socket traffic through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *App) { a.dialHTTP = hc }
}

// New builds an App from cfg. The session is not hydrated until Start.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(a)
	}

	if a.storage == nil {
		s, err := store.NewSQLite(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("open session storage: %w", err)
		}
		a.storage = s
	}
	if a.dialHTTP == nil {
		a.dialHTTP = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	a.sessions = session.New(a.storage, logger.With("component", "session"))
	a.client = apiclient.New(cfg.APIBase(), a.sessions,
		apiclient.WithHTTPClient(a.dialHTTP),
		apiclient.WithLogger(logger.With("component", "apiclient")))
	a.guard = view.NewGuard(a.sessions, RouteLogin, RouteRegister)
	a.account = account.NewService(a.client, a.sessions, logger)
	return a, nil
}

// Start restores the persisted session.
func (a *App) Start(ctx context.Context) error {
	return a.sessions.Hydrate(ctx)
}

// Close releases the session storage.
func (a *App) Close() error {
	return a.storage.Close()
}

// Client returns the request client.
func (a *App) Client() *apiclient.Client { return a.client }

// Sessions returns the session store.
func (a *App) Sessions() *session.Store { return a.sessions }

// Account returns the account actions.
func (a *App) Account() *account.Service { return a.account }

// Logger returns the process logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// NewChannel returns an unconnected live channel to the configured socket.
// The dial is bounded by the caller's context, not HTTP_TIMEOUT.
func (a *App) NewChannel() chat.Channel {
	opts := []chat.SocketOption{chat.WithSocketLogger(a.logger.With("component", "chat"))}
	if a.dialHTTP.Timeout == 0 {
		opts = append(opts, chat.WithHTTPClient(a.dialHTTP))
	}
	return chat.NewSocketChannel(a.cfg.SocketURL, opts...)
}

// ChatDeps returns the collaborators for a conversation view.
func (a *App) ChatDeps() chat.Deps {
	return chat.Deps{
		API:        a.client,
		Sessions:   a.sessions,
		NewChannel: a.NewChannel,
		Delivery:   a.cfg.ChatDelivery,
		Logger:     a.logger,
	}
}

// Navigation is the result of Navigate.
type Navigation struct {
	Decision view.Decision
	Screen   Screen // nil unless the route mounted a screen
}

// Navigate resolves route. Protected routes consult the guard first; a
// redirect or loading decision mounts nothing and issues no request. On an
// allowed route the screen is mounted and returned even when its load
// failed, since the failure is part of what it shows.
func (a *App) Navigate(ctx context.Context, route string) (Navigation, error) {
	u, err := url.Parse(route)
	if err != nil {
		return Navigation{}, fmt.Errorf("%w: %s", ErrNotFound, route)
	}
	path := strings.TrimRight(u.Path, "/")
	if path == "" {
		path = RouteFeed
	}

	d := a.guard.Check(path)
	if d.Outcome != view.Allow {
		a.logger.Debug("Navigation held", "route", path, "outcome", d.Outcome, "to", d.To)
		return Navigation{Decision: d}, nil
	}

	screen, mount, err := a.screen(ctx, path, u.Query())
	if err != nil {
		return Navigation{}, err
	}
	nav := Navigation{Decision: d, Screen: screen}
	if mount != nil {
		if err := mount(ctx); err != nil {
			a.logger.Debug("Screen loaded with error", "route", path, "error", err)
		}
	}
	return nav, nil
}

func (a *App) screen(ctx context.Context, path string, q url.Values) (Screen, func(context.Context) error, error) {
	deps := feed.Deps{API: a.client, Sessions: a.sessions, Logger: a.logger}

	switch {
	case path == RouteLogin, path == RouteRegister:
		return nil, nil, nil
	case path == RouteFeed:
		v := feed.NewView(ctx, deps)
		return v, v.Mount, nil
	case path == RouteNotifications:
		v := notify.NewView(ctx, a.client, a.sessions, a.logger)
		return v, v.Mount, nil
	case path == RouteMessages:
		v := chat.NewInbox(ctx, a.client, a.sessions, a.logger)
		return v, v.Mount, nil
	case strings.HasPrefix(path, RouteProfile):
		id := strings.TrimPrefix(path, RouteProfile)
		if id == "" || strings.Contains(id, "/") {
			break
		}
		v := profile.NewView(ctx, a.client, a.sessions, a.logger, id)
		return v, v.Mount, nil
	case path == RouteGroups:
		v := groups.NewListView(ctx, a.client, a.sessions, a.logger)
		return v, v.Mount, nil
	case strings.HasPrefix(path, RouteGroups+"/"):
		id := strings.TrimPrefix(path, RouteGroups+"/")
		if strings.Contains(id, "/") {
			break
		}
		v := groups.NewDetailView(ctx, a.client, a.sessions, a.logger, id)
		return v, v.Mount, nil
	case path == RouteCastingCalls:
		v := casting.NewView(ctx, a.client, a.sessions, a.logger)
		return v, v.Mount, nil
	case path == RouteLeaderboard:
		v := discover.NewLeaderboard(ctx, a.client, a.sessions, a.logger)
		role := q.Get("role")
		return v, func(ctx context.Context) error { return v.SelectRole(ctx, role) }, nil
	case path == RouteSearch:
		v := discover.NewSearch(ctx, a.client, a.sessions, a.logger)
		query := domain.SearchQuery{Query: q.Get("q"), Role: q.Get("role"), Location: q.Get("location")}
		return v, func(ctx context.Context) error { return v.Run(ctx, query) }, nil
	case path == RouteSettings:
		return &Settings{Service: a.account}, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Settings is the account settings screen. It loads nothing.
type Settings struct {
	*account.Service
}

// Close implements Screen.
func (*Settings) Close() {}

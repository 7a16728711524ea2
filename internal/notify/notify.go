// Package notify is the notifications screen. It fetches the list exactly
// once per mount: no polling, no pagination, no retry. Read status is shown
// as the server reports it; the client never changes it.
package notify

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgNotAuthenticated = "Not authenticated."
	MsgLoadFailed       = "Failed to load notifications."
)

// API is the subset of the request client the view uses.
type API interface {
	ListNotifications(ctx context.Context) ([]domain.Notification, error)
}

// Sessions exposes the current session.
type Sessions interface {
	Current() (domain.Session, bool)
}

// View is the notifications screen.
type View struct {
	scope    *view.Scope
	api      API
	sessions Sessions
	logger   *slog.Logger

	loading bool
	err     string
	items   []domain.Notification
}

// NewView creates an unmounted notifications view.
func NewView(parent context.Context, api API, sessions Sessions, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		scope:    view.NewScope(parent),
		api:      api,
		sessions: sessions,
		logger:   logger,
		loading:  true,
	}
}

// Mount performs the single fetch.
func (v *View) Mount(ctx context.Context) error {
	if _, ok := v.sessions.Current(); !ok {
		v.scope.Update(func() {
			v.loading = false
			v.err = MsgNotAuthenticated
		})
		return apiclient.ErrAuthRequired
	}

	items, err := v.api.ListNotifications(ctx)
	if err != nil {
		msg := apiclient.Report(v.logger, "load notifications", err, MsgLoadFailed)
		v.scope.Update(func() {
			v.loading = false
			v.err = msg
		})
		return err
	}

	v.scope.Update(func() {
		v.loading = false
		v.err = ""
		v.items = items
	})
	return nil
}

// State is a snapshot of the screen.
type State struct {
	Loading bool
	Err     string
	Items   []domain.Notification
	Unread  int
}

// State returns a snapshot of the screen.
func (v *View) State() State {
	var st State
	v.scope.Read(func() {
		st = State{Loading: v.loading, Err: v.err, Items: slices.Clone(v.items)}
	})
	for i := range st.Items {
		if st.Items[i].Unread() {
			st.Unread++
		}
	}
	return st
}

// Close tears the view down.
func (v *View) Close() { v.scope.Close() }

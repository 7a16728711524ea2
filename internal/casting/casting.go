// Package casting is the casting call board: open roles, posting new ones
// and applying. Applying notifies the call's author on the server side.
package casting

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLoadFailed   = "Failed to load casting calls."
	MsgCreateFailed = "Failed to create casting call. Please check the form and try again."
	MsgApplyFailed  = "Failed to submit application. Please try again."
	MsgClosed       = "Applications for this role are closed."
	MsgOwnCall      = "You cannot apply to your own casting call."
)

// API is the subset of the request client the board uses.
type API interface {
	ListCastingCalls(ctx context.Context) ([]domain.CastingCall, error)
	CreateCastingCall(ctx context.Context, in domain.CastingCallInput) (domain.CastingCall, error)
	ApplyToCastingCall(ctx context.Context, callID string) error
}

// Sessions exposes the current session.
type Sessions interface {
	Current() (domain.Session, bool)
}

// Entry is a casting call with the viewer's application state.
type Entry struct {
	Call    domain.CastingCall
	Applied bool
	Err     string
}

// View is the casting call board.
type View struct {
	scope    *view.Scope
	api      API
	sessions Sessions
	logger   *slog.Logger
	now      func() time.Time

	loading bool
	err     string
	entries []Entry
}

// NewView creates an unmounted board.
func NewView(parent context.Context, api API, sessions Sessions, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		scope:    view.NewScope(parent),
		api:      api,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		loading:  true,
	}
}

// Mount loads the board.
func (v *View) Mount(ctx context.Context) error {
	sess, ok := v.sessions.Current()
	if !ok {
		v.scope.Update(func() { v.loading = false })
		return apiclient.ErrAuthRequired
	}
	calls, err := v.api.ListCastingCalls(ctx)
	if err != nil {
		msg := apiclient.Report(v.logger, "load casting calls", err, MsgLoadFailed)
		v.scope.Update(func() {
			v.loading = false
			v.err = msg
		})
		return err
	}

	entries := make([]Entry, 0, len(calls))
	for _, c := range calls {
		entries = append(entries, Entry{Call: c, Applied: slices.Contains(c.Applicants, sess.UserID())})
	}
	v.scope.Update(func() {
		v.loading = false
		v.err = ""
		v.entries = entries
	})
	return nil
}

// Create posts a new casting call and refreshes the board.
func (v *View) Create(ctx context.Context, in domain.CastingCallInput) error {
	if _, ok := v.sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	if _, err := v.api.CreateCastingCall(ctx, in); err != nil {
		msg := apiclient.Report(v.logger, "create casting call", err, MsgCreateFailed)
		v.scope.Update(func() { v.err = msg })
		return err
	}
	return v.Mount(ctx)
}

// Apply submits an application for callID. The entry's error is set on
// failure; on success it is marked applied.
func (v *View) Apply(ctx context.Context, callID string) error {
	sess, ok := v.sessions.Current()
	if !ok {
		return apiclient.ErrAuthRequired
	}
	entry, found := v.Entry(callID)
	if found {
		if entry.Call.Author.ID == sess.UserID() {
			return validation.Field("", MsgOwnCall)
		}
		if !entry.Call.Open(v.now()) {
			v.setEntry(callID, func(e *Entry) { e.Err = MsgClosed })
			return validation.Field("applicationDeadline", "has passed")
		}
	}

	v.setEntry(callID, func(e *Entry) { e.Err = "" })
	if err := v.api.ApplyToCastingCall(ctx, callID); err != nil {
		v.logger.Warn("Request failed", "op", "apply", "call_id", callID, "error", err)
		v.setEntry(callID, func(e *Entry) { e.Err = MsgApplyFailed })
		return err
	}
	v.setEntry(callID, func(e *Entry) { e.Applied = true })
	return nil
}

func (v *View) setEntry(callID string, fn func(*Entry)) {
	v.scope.Update(func() {
		for i := range v.entries {
			if v.entries[i].Call.ID == callID {
				fn(&v.entries[i])
				return
			}
		}
	})
}

// Entry returns the board entry for callID.
func (v *View) Entry(callID string) (Entry, bool) {
	for _, e := range v.Entries() {
		if e.Call.ID == callID {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns the board in server order.
func (v *View) Entries() []Entry {
	var out []Entry
	v.scope.Read(func() { out = slices.Clone(v.entries) })
	return out
}

// Err returns the inline error.
func (v *View) Err() string {
	var s string
	v.scope.Read(func() { s = v.err })
	return s
}

// Close tears the view down.
func (v *View) Close() { v.scope.Close() }

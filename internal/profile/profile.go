// Package profile is the member profile screen: the member, their posts and
// the follow toggle.
package profile

import (
	"context"
	"log/slog"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/feed"
	"github.com/ashureev/castline/internal/optimistic"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLoginToFollow = "You must be logged in to follow/unfollow a user."
	MsgFollowFailed  = "Failed to update follow status. Please try again."
	MsgLoadFailed    = "Failed to load profile. The user may not exist or an error occurred."
)

// API is the subset of the request client the profile uses.
type API interface {
	feed.API
	GetProfile(ctx context.Context, userID string) (domain.Profile, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
}

// View shows one member.
type View struct {
	*feed.Board
	scope  *view.Scope
	api    API
	deps   feed.Deps
	userID string

	user      domain.User
	following bool
	followers int
	err       string
	notice    string
}

// NewView creates an unmounted profile view for userID.
func NewView(parent context.Context, api API, sessions feed.Sessions, logger *slog.Logger, userID string) *View {
	scope := view.NewScope(parent)
	deps := feed.Deps{API: api, Sessions: sessions, Logger: logger}
	return &View{
		Board:  feed.NewBoard(scope, deps),
		scope:  scope,
		api:    api,
		deps:   deps,
		userID: userID,
	}
}

// Mount loads the member and their posts.
func (v *View) Mount(ctx context.Context) error {
	p, err := v.api.GetProfile(ctx, v.userID)
	if err != nil {
		msg := apiclient.Report(v.deps.Logger, "load profile", err, MsgLoadFailed)
		v.scope.Update(func() { v.err = msg })
		return err
	}

	viewer := ""
	if sess, ok := v.deps.Sessions.Current(); ok {
		viewer = sess.UserID()
	}
	v.scope.Update(func() {
		v.user = p.User
		v.following = p.User.FollowedBy(viewer)
		v.followers = len(p.User.Followers)
		v.err = ""
	})
	v.Set(p.Posts)
	return nil
}

// State is a snapshot of the profile header.
type State struct {
	User      domain.User
	Following bool
	Followers int
	Self      bool
	Err       string
	Notice    string
}

// State returns a snapshot of the profile header.
func (v *View) State() State {
	viewer := ""
	if sess, ok := v.deps.Sessions.Current(); ok {
		viewer = sess.UserID()
	}
	var st State
	v.scope.Read(func() {
		st = State{
			User:      v.user,
			Following: v.following,
			Followers: v.followers,
			Self:      viewer != "" && viewer == v.userID,
			Err:       v.err,
			Notice:    v.notice,
		}
	})
	return st
}

// ToggleFollow follows or unfollows optimistically and rolls back on failure.
func (v *View) ToggleFollow(ctx context.Context) error {
	sess, ok := v.deps.Sessions.Current()
	if !ok {
		v.scope.Update(func() { v.notice = MsgLoginToFollow })
		return apiclient.ErrAuthRequired
	}
	if sess.UserID() == v.userID {
		return validation.Field("", "You cannot follow yourself.")
	}

	var wasFollowing bool
	apply := func() {
		v.scope.Update(func() {
			wasFollowing = v.following
			v.following = !v.following
			if v.following {
				v.followers++
			} else {
				v.followers--
			}
			v.notice = ""
		})
	}
	revert := func() {
		v.scope.Update(func() {
			v.following = !v.following
			if wasFollowing {
				v.followers++
			} else {
				v.followers--
			}
		})
	}

	err := optimistic.Do(ctx, apply, revert, func(ctx context.Context) error {
		if wasFollowing {
			return v.api.Unfollow(ctx, v.userID)
		}
		return v.api.Follow(ctx, v.userID)
	})
	if err != nil {
		msg := apiclient.Report(v.deps.Logger, "toggle follow", err, MsgFollowFailed)
		v.scope.Update(func() { v.notice = msg })
	}
	return err
}

// Close tears the view down.
func (v *View) Close() { v.scope.Close() }

// Package groups holds the group directory and the group page.
package groups

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/feed"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLoadFailed         = "Failed to load groups."
	MsgCreateFailed       = "Failed to create group. Please try again."
	MsgGroupLoadFailed    = "Failed to load group."
	MsgMembershipFailed   = "Failed to update membership."
	MsgAdminCannotLeave   = "You are the Admin"
	MsgRemoveMemberFailed = "Failed to remove member."
	MsgCoverFailed        = "Failed to upload cover image."
	MsgDeleteFailed       = "Failed to delete group."
	MsgAdminOnly          = "Only the group admin can do that."
)

// API is the subset of the request client the group screens use.
type API interface {
	feed.API
	ListGroups(ctx context.Context) ([]domain.Group, error)
	CreateGroup(ctx context.Context, in domain.GroupInput) (domain.Group, error)
	GetGroup(ctx context.Context, groupID string) (domain.Group, error)
	ListGroupPosts(ctx context.Context, groupID string) ([]domain.Post, error)
	JoinGroup(ctx context.Context, groupID string) error
	LeaveGroup(ctx context.Context, groupID string) error
	RemoveMember(ctx context.Context, groupID, memberID string) error
	UploadGroupCover(ctx context.Context, groupID string, file apiclient.Upload) (domain.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

// ListView is the group directory.
type ListView struct {
	scope    *view.Scope
	api      API
	sessions feed.Sessions
	logger   *slog.Logger

	loading bool
	err     string
	groups  []domain.Group
}

// NewListView creates an unmounted directory.
func NewListView(parent context.Context, api API, sessions feed.Sessions, logger *slog.Logger) *ListView {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListView{scope: view.NewScope(parent), api: api, sessions: sessions, logger: logger, loading: true}
}

// Mount loads the directory.
func (v *ListView) Mount(ctx context.Context) error {
	if _, ok := v.sessions.Current(); !ok {
		v.scope.Update(func() { v.loading = false })
		return apiclient.ErrAuthRequired
	}
	groups, err := v.api.ListGroups(ctx)
	if err != nil {
		msg := apiclient.Report(v.logger, "load groups", err, MsgLoadFailed)
		v.scope.Update(func() {
			v.loading = false
			v.err = msg
		})
		return err
	}
	v.scope.Update(func() {
		v.loading = false
		v.err = ""
		v.groups = groups
	})
	return nil
}

// Create makes a new group and reloads the directory.
func (v *ListView) Create(ctx context.Context, in domain.GroupInput) (domain.Group, error) {
	if _, ok := v.sessions.Current(); !ok {
		return domain.Group{}, apiclient.ErrAuthRequired
	}
	g, err := v.api.CreateGroup(ctx, in)
	if err != nil {
		msg := apiclient.Report(v.logger, "create group", err, MsgCreateFailed)
		v.scope.Update(func() { v.err = msg })
		return domain.Group{}, err
	}
	return g, v.Mount(ctx)
}

// Groups returns the listed groups.
func (v *ListView) Groups() []domain.Group {
	var out []domain.Group
	v.scope.Read(func() { out = slices.Clone(v.groups) })
	return out
}

// Err returns the inline error.
func (v *ListView) Err() string {
	var s string
	v.scope.Read(func() { s = v.err })
	return s
}

// Loading reports whether the directory is loading.
func (v *ListView) Loading() bool {
	var b bool
	v.scope.Read(func() { b = v.loading })
	return b
}

// Close tears the view down.
func (v *ListView) Close() { v.scope.Close() }

// DetailView is one group's page: header, members and the group's posts.
type DetailView struct {
	*feed.Board
	scope   *view.Scope
	api     API
	deps    feed.Deps
	groupID string

	group   domain.Group
	err     string
	notice  string
	deleted bool
}

// NewDetailView creates an unmounted page for groupID.
func NewDetailView(parent context.Context, api API, sessions feed.Sessions, logger *slog.Logger, groupID string) *DetailView {
	if logger == nil {
		logger = slog.Default()
	}
	scope := view.NewScope(parent)
	deps := feed.Deps{API: api, Sessions: sessions, Logger: logger}
	return &DetailView{
		Board:   feed.NewBoard(scope, deps),
		scope:   scope,
		api:     api,
		deps:    deps,
		groupID: groupID,
	}
}

// Mount loads the group and its posts.
func (v *DetailView) Mount(ctx context.Context) error {
	if _, ok := v.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	g, err := v.api.GetGroup(ctx, v.groupID)
	if err != nil {
		msg := apiclient.Report(v.deps.Logger, "load group", err, MsgGroupLoadFailed)
		v.scope.Update(func() { v.err = msg })
		return err
	}
	v.scope.Update(func() {
		v.group = g
		v.err = ""
	})
	return v.Load(ctx, func(ctx context.Context) ([]domain.Post, error) {
		return v.api.ListGroupPosts(ctx, v.groupID)
	})
}

// DetailState is a snapshot of the group header.
type DetailState struct {
	Group    domain.Group
	IsMember bool
	IsAdmin  bool
	Deleted  bool
	Err      string
	Notice   string
}

// State returns a snapshot of the group header.
func (v *DetailView) State() DetailState {
	viewer := ""
	if sess, ok := v.deps.Sessions.Current(); ok {
		viewer = sess.UserID()
	}
	var st DetailState
	v.scope.Read(func() {
		st = DetailState{
			Group:    v.group,
			IsMember: v.group.IsMember(viewer),
			IsAdmin:  v.group.IsAdmin(viewer),
			Deleted:  v.deleted,
			Err:      v.err,
			Notice:   v.notice,
		}
	})
	return st
}

// ToggleMembership joins or leaves the group, then reloads the page. The
// admin cannot leave.
func (v *DetailView) ToggleMembership(ctx context.Context) error {
	sess, ok := v.deps.Sessions.Current()
	if !ok {
		return apiclient.ErrAuthRequired
	}
	st := v.State()
	if st.IsAdmin {
		return validation.Field("", MsgAdminCannotLeave)
	}

	var err error
	if st.IsMember {
		err = v.api.LeaveGroup(ctx, v.groupID)
	} else {
		err = v.api.JoinGroup(ctx, v.groupID)
	}
	if err != nil {
		v.setNotice(apiclient.Report(v.deps.Logger.With("user_id", sess.UserID()), "toggle membership", err, MsgMembershipFailed))
		return err
	}
	return v.Mount(ctx)
}

// Post publishes into the group. Only members may post.
func (v *DetailView) Post(ctx context.Context, in apiclient.NewPost) error {
	sess, ok := v.deps.Sessions.Current()
	if !ok {
		return apiclient.ErrAuthRequired
	}
	if g := v.State().Group; !g.IsMember(sess.UserID()) {
		return validation.Field("", "Join the group to post.")
	}
	in.GroupID = v.groupID
	post, err := v.api.CreatePost(ctx, in)
	if err != nil {
		return err
	}
	v.Prepend(post)
	return nil
}

// RemoveMember removes memberID. Admin only.
func (v *DetailView) RemoveMember(ctx context.Context, memberID string) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if err := v.api.RemoveMember(ctx, v.groupID, memberID); err != nil {
		v.setNotice(apiclient.Report(v.deps.Logger, "remove member", err, MsgRemoveMemberFailed))
		return err
	}
	v.scope.Update(func() {
		v.group.Members = slices.DeleteFunc(slices.Clone(v.group.Members), func(m domain.UserRef) bool { return m.ID == memberID })
	})
	return nil
}

// UploadCover replaces the cover image. Admin only.
func (v *DetailView) UploadCover(ctx context.Context, file apiclient.Upload) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	g, err := v.api.UploadGroupCover(ctx, v.groupID, file)
	if err != nil {
		v.setNotice(apiclient.Report(v.deps.Logger, "upload cover", err, MsgCoverFailed))
		return err
	}
	v.scope.Update(func() { v.group = g })
	return nil
}

// DeleteGroup removes the group. Admin only. Afterwards the page reports
// Deleted and the caller navigates away.
func (v *DetailView) DeleteGroup(ctx context.Context) error {
	if err := v.requireAdmin(); err != nil {
		return err
	}
	if err := v.api.DeleteGroup(ctx, v.groupID); err != nil {
		v.setNotice(apiclient.Report(v.deps.Logger, "delete group", err, MsgDeleteFailed))
		return err
	}
	v.scope.Update(func() { v.deleted = true })
	return nil
}

func (v *DetailView) requireAdmin() error {
	if _, ok := v.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	if !v.State().IsAdmin {
		return validation.Field("", MsgAdminOnly)
	}
	return nil
}

func (v *DetailView) setNotice(msg string) {
	v.scope.Update(func() { v.notice = msg })
}

// Close tears the view down.
func (v *DetailView) Close() { v.scope.Close() }

// Package feed renders posts as cards and applies the mutations a member
// can make on them. Likes are applied optimistically and rolled back when
// the server refuses.
package feed

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/optimistic"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLoginToLike      = "You must be logged in to like a post."
	MsgLikeFailed       = "Failed to like the post. Please try again."
	MsgLoginToDelete    = "You must be logged in to delete a post."
	MsgDeleteFailed     = "Failed to delete post. Please try again."
	MsgCommentFailed    = "Failed to post comment. Please try again."
	MsgDelCommentFailed = "Failed to delete comment. Please try again."
	MsgLoadFailed       = "Failed to load posts."
	MsgUpdateFailed     = "Failed to update post. Please try again."
)

// API is the subset of the request client the feed uses.
type API interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, in apiclient.NewPost) (domain.Post, error)
	UploadPostMedia(ctx context.Context, media apiclient.Upload) (apiclient.MediaRef, error)
	UpdatePost(ctx context.Context, postID string, upd domain.PostUpdate) (domain.Post, error)
	DeletePost(ctx context.Context, postID string) error
	ToggleLike(ctx context.Context, postID string) error
	AddComment(ctx context.Context, postID, text string) ([]domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// Sessions exposes the current session.
type Sessions interface {
	Current() (domain.Session, bool)
}

// Deps are the collaborators shared by every card of a view.
type Deps struct {
	API      API
	Sessions Sessions
	Logger   *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// CardState is a read-only copy of what a card displays.
type CardState struct {
	Post      domain.Post
	Liked     bool
	LikeCount int
	Comments  []domain.Comment
	Notice    string
}

// PostCard is one post on screen. Its state lives behind the owning view's
// scope, so writes after the view closed are dropped.
type PostCard struct {
	scope *view.Scope
	deps  Deps

	post     domain.Post
	liked    bool
	likes    int
	comments []domain.Comment
	notice   string
}

// NewCard builds a card for post inside scope.
func NewCard(scope *view.Scope, deps Deps, post domain.Post) *PostCard {
	post.Author.Normalize()
	viewer := ""
	if sess, ok := deps.Sessions.Current(); ok {
		viewer = sess.UserID()
	}
	return &PostCard{
		scope:    scope,
		deps:     deps,
		post:     post,
		liked:    post.LikedBy(viewer),
		likes:    post.LikeCount(),
		comments: slices.Clone(post.Comments),
	}
}

// ID returns the post id.
func (c *PostCard) ID() string { return c.post.ID }

// State returns a snapshot of the card.
func (c *PostCard) State() CardState {
	var st CardState
	c.scope.Read(func() {
		st = CardState{
			Post:      c.post,
			Liked:     c.liked,
			LikeCount: c.likes,
			Comments:  slices.Clone(c.comments),
			Notice:    c.notice,
		}
	})
	return st
}

// ToggleLike flips the like immediately and asks the server to do the same.
// When the server fails the flip and the count change are undone and the
// card shows MsgLikeFailed. Without a session nothing is sent.
func (c *PostCard) ToggleLike(ctx context.Context) error {
	if _, ok := c.deps.Sessions.Current(); !ok {
		c.setNotice(MsgLoginToLike)
		return apiclient.ErrAuthRequired
	}

	var delta int
	apply := func() {
		c.scope.Update(func() {
			c.liked = !c.liked
			delta = 1
			if !c.liked {
				delta = -1
			}
			c.likes += delta
			c.notice = ""
		})
	}
	revert := func() {
		c.scope.Update(func() {
			c.liked = !c.liked
			c.likes -= delta
			c.notice = MsgLikeFailed
		})
	}

	err := optimistic.Do(ctx, apply, revert, func(ctx context.Context) error {
		return c.deps.API.ToggleLike(ctx, c.post.ID)
	})
	if err != nil {
		c.deps.logger().Warn("Failed to update like status", "post_id", c.post.ID, "error", err)
	}
	return err
}

// AddComment posts a comment and replaces the list with the server's.
func (c *PostCard) AddComment(ctx context.Context, text string) error {
	if _, ok := c.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	comments, err := c.deps.API.AddComment(ctx, c.post.ID, text)
	if err != nil {
		c.setNotice(apiclient.Report(c.deps.logger(), "add comment", err, MsgCommentFailed))
		return err
	}
	c.scope.Update(func() {
		c.comments = comments
		c.notice = ""
	})
	return nil
}

// DeleteComment removes a comment and drops it locally on success.
func (c *PostCard) DeleteComment(ctx context.Context, commentID string) error {
	if _, ok := c.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	if err := c.deps.API.DeleteComment(ctx, c.post.ID, commentID); err != nil {
		c.setNotice(apiclient.Report(c.deps.logger(), "delete comment", err, MsgDelCommentFailed))
		return err
	}
	c.scope.Update(func() {
		c.comments = slices.DeleteFunc(c.comments, func(cm domain.Comment) bool { return cm.ID == commentID })
		c.notice = ""
	})
	return nil
}

func (c *PostCard) replace(post domain.Post) {
	post.Author.Normalize()
	viewer := ""
	if sess, ok := c.deps.Sessions.Current(); ok {
		viewer = sess.UserID()
	}
	c.post = post
	c.liked = post.LikedBy(viewer)
	c.likes = post.LikeCount()
	c.comments = slices.Clone(post.Comments)
	c.notice = ""
}

func (c *PostCard) setNotice(msg string) {
	c.scope.Update(func() { c.notice = msg })
}

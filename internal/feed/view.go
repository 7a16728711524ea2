package feed

import (
	"context"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/view"
)

// View is the main feed screen.
type View struct {
	*Board
	scope *view.Scope
}

// NewView creates an unmounted feed view.
func NewView(parent context.Context, deps Deps) *View {
	scope := view.NewScope(parent)
	return &View{Board: NewBoard(scope, deps), scope: scope}
}

// Mount fetches the feed once.
func (v *View) Mount(ctx context.Context) error {
	return v.Load(ctx, v.deps.API.ListPosts)
}

// Create publishes a post and puts it at the top of the feed.
func (v *View) Create(ctx context.Context, in apiclient.NewPost) error {
	if _, ok := v.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	post, err := v.deps.API.CreatePost(ctx, in)
	if err != nil {
		return err
	}
	v.Prepend(post)
	return nil
}

// Scope returns the view's lifetime scope.
func (v *View) Scope() *view.Scope { return v.scope }

// Close tears the view down; pending results are discarded.
func (v *View) Close() { v.scope.Close() }

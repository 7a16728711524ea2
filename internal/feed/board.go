package feed

import (
	"context"
	"slices"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

// Board is an ordered list of post cards, the part shared by the main feed,
// a group's page and a profile.
type Board struct {
	scope *view.Scope
	deps  Deps

	loading bool
	err     string
	cards   []*PostCard
}

// NewBoard returns an empty board owned by scope.
func NewBoard(scope *view.Scope, deps Deps) *Board {
	return &Board{scope: scope, deps: deps}
}

// Load replaces the cards with the result of fetch. One card is built per
// returned post. A failure leaves the inline error set and no cards.
func (b *Board) Load(ctx context.Context, fetch func(context.Context) ([]domain.Post, error)) error {
	b.scope.Update(func() {
		b.loading = true
		b.err = ""
	})

	posts, err := fetch(ctx)
	if err != nil {
		msg := apiclient.Report(b.deps.logger(), "load posts", err, MsgLoadFailed)
		b.scope.Update(func() {
			b.loading = false
			b.err = msg
			b.cards = nil
		})
		return err
	}

	b.Set(posts)
	return nil
}

// Set replaces the cards without fetching.
func (b *Board) Set(posts []domain.Post) {
	cards := make([]*PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, NewCard(b.scope, b.deps, p))
	}
	b.scope.Update(func() {
		b.loading = false
		b.err = ""
		b.cards = cards
	})
}

// Cards returns the cards in display order.
func (b *Board) Cards() []*PostCard {
	var out []*PostCard
	b.scope.Read(func() { out = slices.Clone(b.cards) })
	return out
}

// Card returns the card for postID.
func (b *Board) Card(postID string) (*PostCard, bool) {
	for _, c := range b.Cards() {
		if c.ID() == postID {
			return c, true
		}
	}
	return nil, false
}

// Loading reports whether a load is in flight.
func (b *Board) Loading() bool {
	var v bool
	b.scope.Read(func() { v = b.loading })
	return v
}

// Err returns the inline error of the last load.
func (b *Board) Err() string {
	var v string
	b.scope.Read(func() { v = b.err })
	return v
}

// Prepend puts a new post at the top.
func (b *Board) Prepend(post domain.Post) {
	card := NewCard(b.scope, b.deps, post)
	b.scope.Update(func() {
		b.cards = append([]*PostCard{card}, b.cards...)
	})
}

// Remove drops the card for postID.
func (b *Board) Remove(postID string) {
	b.scope.Update(func() {
		b.cards = slices.DeleteFunc(b.cards, func(c *PostCard) bool { return c.ID() == postID })
	})
}

// Replace swaps in the stored version of an edited post.
func (b *Board) Replace(post domain.Post) {
	b.scope.Update(func() {
		for _, c := range b.cards {
			if c.post.ID == post.ID {
				c.replace(post)
				return
			}
		}
	})
}

// Delete removes a post on the server, then from the board.
func (b *Board) Delete(ctx context.Context, postID string) error {
	sess, ok := b.deps.Sessions.Current()
	if !ok {
		return apiclient.ErrAuthRequired
	}
	card, found := b.Card(postID)
	if found {
		st := card.State()
		if !st.Post.CanModify(sess.UserID()) {
			card.setNotice("You can only delete your own posts.")
			return validation.Field("post", "can only be deleted by its author or the group admin")
		}
	}
	if err := b.deps.API.DeletePost(ctx, postID); err != nil {
		msg := apiclient.Report(b.deps.logger(), "delete post", err, MsgDeleteFailed)
		if found {
			card.setNotice(msg)
		}
		return err
	}
	b.Remove(postID)
	return nil
}

// Edit optionally uploads new media, then saves the post and swaps in the
// stored version.
func (b *Board) Edit(ctx context.Context, postID string, upd domain.PostUpdate, media *apiclient.Upload) error {
	if _, ok := b.deps.Sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	card, found := b.Card(postID)

	if media != nil {
		ref, err := b.deps.API.UploadPostMedia(ctx, *media)
		if err != nil {
			if found {
				card.setNotice(apiclient.Report(b.deps.logger(), "upload media", err, MsgUpdateFailed))
			}
			return err
		}
		upd.MediaURL = ref.MediaURL
		upd.MediaType = ref.MediaType
	}

	post, err := b.deps.API.UpdatePost(ctx, postID, upd)
	if err != nil {
		if found {
			card.setNotice(apiclient.Report(b.deps.logger(), "update post", err, MsgUpdateFailed))
		}
		return err
	}
	b.Replace(post)
	return nil
}

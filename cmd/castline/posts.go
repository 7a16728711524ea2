package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/app"
	"github.com/ashureev/castline/internal/feed"
	"github.com/ashureev/castline/internal/groups"
	"github.com/ashureev/castline/internal/render"
)

func (c *cli) feedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Show the post feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := c.openFeed(cmd.Context())
			if err != nil {
				return err
			}
			defer v.Close()
			if err := screenErr(v.Err()); err != nil {
				return err
			}
			return c.printer.Posts(postRows(v.Cards()))
		},
	}
}

func (c *cli) postCmd() *cobra.Command {
	var (
		groupID string
		media   string
	)
	cmd := &cobra.Command{
		Use:   "post <title>",
		Short: "Publish a post, optionally with a photo or video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := apiclient.NewPost{Title: args[0], GroupID: groupID}
			if media != "" {
				up, closeFn, err := openUpload(media)
				if err != nil {
					return err
				}
				defer closeFn()
				in.Media = up
			}

			ctx := cmd.Context()
			if groupID != "" {
				return c.postToGroup(ctx, in)
			}
			v, err := c.openFeed(ctx)
			if err != nil {
				return err
			}
			defer v.Close()
			if err := v.Create(ctx, in); err != nil {
				return err
			}
			return c.printer.Posts(postRows(v.Cards()[:1]))
		},
	}
	cmd.Flags().StringVar(&groupID, "group", "", "post inside this group")
	cmd.Flags().StringVar(&media, "media", "", "path of a photo or video to attach")
	return cmd
}

func (c *cli) postToGroup(ctx context.Context, in apiclient.NewPost) error {
	screen, err := c.open(ctx, app.RouteGroups+"/"+in.GroupID)
	if err != nil {
		return err
	}
	v := screen.(*groups.DetailView)
	defer v.Close()
	if err := v.Post(ctx, in); err != nil {
		st := v.State()
		return screenErr(cmp.Or(st.Notice, st.Err, err.Error()))
	}
	return c.printer.Posts(postRows(v.Cards()[:1]))
}

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, card, err := c.feedCard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer v.Close()
			if err := card.ToggleLike(cmd.Context()); err != nil {
				return screenErr(cmp.Or(card.State().Notice, err.Error()))
			}
			return c.printer.Posts(postRows([]*feed.PostCard{card}))
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	var remove string
	cmd := &cobra.Command{
		Use:   "comment <post-id> [text]",
		Short: "Comment on a post, or list its comments",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, card, err := c.feedCard(ctx, args[0])
			if err != nil {
				return err
			}
			defer v.Close()

			switch {
			case remove != "":
				err = card.DeleteComment(ctx, remove)
			case len(args) == 2:
				err = card.AddComment(ctx, args[1])
			}
			if err != nil {
				return screenErr(cmp.Or(card.State().Notice, err.Error()))
			}
			return c.printer.Comments(card.State().Comments)
		},
	}
	cmd.Flags().StringVar(&remove, "delete", "", "delete the comment with this id")
	return cmd
}

func (c *cli) openFeed(ctx context.Context) (*feed.View, error) {
	screen, err := c.open(ctx, app.RouteFeed)
	if err != nil {
		return nil, err
	}
	return screen.(*feed.View), nil
}

func (c *cli) feedCard(ctx context.Context, postID string) (*feed.View, *feed.PostCard, error) {
	v, err := c.openFeed(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := screenErr(v.Err()); err != nil {
		v.Close()
		return nil, nil, err
	}
	card, ok := v.Card(postID)
	if !ok {
		v.Close()
		return nil, nil, fmt.Errorf("post %s is not in your feed", postID)
	}
	return v, card, nil
}

func postRows(cards []*feed.PostCard) []render.PostRow {
	rows := make([]render.PostRow, 0, len(cards))
	for _, card := range cards {
		st := card.State()
		rows = append(rows, render.PostRow{Post: st.Post, Liked: st.Liked, LikeCount: st.LikeCount, Comments: len(st.Comments)})
	}
	return rows
}

// openUpload opens path and sniffs its content type.
func openUpload(path string) (*apiclient.Upload, func(), error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	up := &apiclient.Upload{Name: filepath.Base(path), ContentType: mt.String(), Content: f}
	return up, func() { _ = f.Close() }, nil
}

package apiclient

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// Upload is a file handed to an upload endpoint.
type Upload struct {
	Name        string
	ContentType string
	Content     io.Reader
}

func (u *Upload) part(field string) FormFile {
	return FormFile{Field: field, Name: u.Name, ContentType: u.ContentType, Content: u.Content}
}

// NewPost is the input of CreatePost.
type NewPost struct {
	Title   string
	GroupID string
	Media   *Upload
}

// MediaRef is what an upload-only POST /posts returns.
type MediaRef struct {
	MediaURL  string `json:"mediaUrl" validate:"required"`
	MediaType string `json:"mediaType" validate:"oneof=Photo Video"`
}

// ListPosts returns the feed.
func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.get(ctx, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost publishes a post, optionally into a group and with media.
func (c *Client) CreatePost(ctx context.Context, in NewPost) (domain.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Post{}, validation.Field("title", "is required")
	}
	form := &Form{Fields: map[string]string{"title": in.Title}}
	if in.GroupID != "" {
		form.Fields["groupId"] = in.GroupID
	}
	if in.Media != nil {
		form.Files = append(form.Files, in.Media.part("file"))
	}
	var post domain.Post
	if err := c.upload(ctx, http.MethodPost, "/posts", form, &post); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// UploadPostMedia stores a media file without creating a visible post and
// returns its URL, for use by UpdatePost.
func (c *Client) UploadPostMedia(ctx context.Context, media Upload) (MediaRef, error) {
	form := &Form{Files: []FormFile{media.part("file")}}
	var ref MediaRef
	if err := c.upload(ctx, http.MethodPost, "/posts", form, &ref); err != nil {
		return MediaRef{}, err
	}
	return ref, nil
}

// UpdatePost edits a post and returns the stored version.
func (c *Client) UpdatePost(ctx context.Context, postID string, upd domain.PostUpdate) (domain.Post, error) {
	if err := validation.Struct(upd); err != nil {
		return domain.Post{}, err
	}
	var post domain.Post
	if err := c.send(ctx, http.MethodPut, "/posts/"+escape(postID), upd, &post); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.send(ctx, http.MethodDelete, "/posts/"+escape(postID), nil, nil)
}

// ToggleLike flips the session user's like on a post.
func (c *Client) ToggleLike(ctx context.Context, postID string) error {
	return c.send(ctx, http.MethodPut, "/posts/"+escape(postID)+"/like", struct{}{}, nil)
}

// AddComment comments on a post and returns the post's full comment list.
func (c *Client) AddComment(ctx context.Context, postID, text string) ([]domain.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, validation.Field("text", "is required")
	}
	body := struct {
		Text string `json:"text"`
	}{text}
	var comments []domain.Comment
	if err := c.send(ctx, http.MethodPost, "/posts/"+escape(postID)+"/comment", body, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.send(ctx, http.MethodDelete, "/posts/"+escape(postID)+"/comment/"+escape(commentID), nil, nil)
}

package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// GetProfile returns a member and their posts.
func (c *Client) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var p domain.Profile
	if err := c.get(ctx, "/users/"+escape(userID), nil, &p); err != nil {
		return domain.Profile{}, err
	}
	p.User.Normalize()
	return p, nil
}

// UpdateMe edits the session user's profile and returns the stored user.
func (c *Client) UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (domain.User, error) {
	if err := validation.Struct(upd); err != nil {
		return domain.User{}, err
	}
	var u domain.User
	if err := c.send(ctx, http.MethodPut, "/users/me", upd, &u); err != nil {
		return domain.User{}, err
	}
	u.Normalize()
	return u, nil
}

// Follow makes the session user follow userID.
func (c *Client) Follow(ctx context.Context, userID string) error {
	return c.send(ctx, http.MethodPost, "/users/"+escape(userID)+"/follow", struct{}{}, nil)
}

// Unfollow reverses Follow.
func (c *Client) Unfollow(ctx context.Context, userID string) error {
	return c.send(ctx, http.MethodDelete, "/users/"+escape(userID)+"/follow", nil, nil)
}

// SearchUsers finds members by free text, role and location.
func (c *Client) SearchUsers(ctx context.Context, q domain.SearchQuery) ([]domain.User, error) {
	query := url.Values{}
	if q.Query != "" {
		query.Set("q", q.Query)
	}
	if q.Role != "" {
		query.Set("role", q.Role)
	}
	if q.Location != "" {
		query.Set("location", q.Location)
	}
	var users []domain.User
	if err := c.get(ctx, "/users/search", query, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, nil
}

// UploadAvatar stores a profile picture and returns its URL.
func (c *Client) UploadAvatar(ctx context.Context, file Upload) (string, error) {
	var resp struct {
		URL string `json:"profilePictureUrl" validate:"required"`
	}
	form := &Form{Files: []FormFile{file.part("avatar")}}
	if err := c.upload(ctx, http.MethodPost, "/users/upload/avatar", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// UploadResume stores a resume document and returns its URL.
func (c *Client) UploadResume(ctx context.Context, file Upload) (string, error) {
	var resp struct {
		URL string `json:"resumeUrl" validate:"required"`
	}
	form := &Form{Files: []FormFile{file.part("resume")}}
	if err := c.upload(ctx, http.MethodPost, "/users/upload/resume", form, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

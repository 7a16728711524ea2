package apiclient

import (
	"context"
	"net/http"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// ListGroups returns every group visible to the session user.
func (c *Client) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	if err := c.get(ctx, "/groups", nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates a group administered by the session user.
func (c *Client) CreateGroup(ctx context.Context, in domain.GroupInput) (domain.Group, error) {
	if err := validation.Struct(in); err != nil {
		return domain.Group{}, err
	}
	var g domain.Group
	if err := c.send(ctx, http.MethodPost, "/groups", in, &g); err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// GetGroup returns one group.
func (c *Client) GetGroup(ctx context.Context, groupID string) (domain.Group, error) {
	var g domain.Group
	if err := c.get(ctx, "/groups/"+escape(groupID), nil, &g); err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// ListGroupPosts returns the posts published into a group.
func (c *Client) ListGroupPosts(ctx context.Context, groupID string) ([]domain.Post, error) {
	var posts []domain.Post
	if err := c.get(ctx, "/groups/"+escape(groupID)+"/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// JoinGroup adds the session user to a group.
func (c *Client) JoinGroup(ctx context.Context, groupID string) error {
	return c.send(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/join", struct{}{}, nil)
}

// LeaveGroup removes the session user from a group.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	return c.send(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/leave", struct{}{}, nil)
}

// RemoveMember removes memberID from a group the session user administers.
func (c *Client) RemoveMember(ctx context.Context, groupID, memberID string) error {
	body := struct {
		MemberID string `json:"memberId"`
	}{memberID}
	return c.send(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/remove-member", body, nil)
}

// UploadGroupCover replaces a group's cover image and returns the updated group.
func (c *Client) UploadGroupCover(ctx context.Context, groupID string, file Upload) (domain.Group, error) {
	var g domain.Group
	form := &Form{Files: []FormFile{file.part("coverImage")}}
	if err := c.upload(ctx, http.MethodPut, "/groups/"+escape(groupID)+"/cover", form, &g); err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

// DeleteGroup removes a group the session user administers.
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.send(ctx, http.MethodDelete, "/groups/"+escape(groupID), nil, nil)
}

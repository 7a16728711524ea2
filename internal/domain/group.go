package domain

import (
	"slices"
	"time"
)

// GroupRef is the group summary embedded in a post.
type GroupRef struct {
	ID    string  `json:"_id" validate:"required"`
	Name  string  `json:"name,omitempty"`
	Admin UserRef `json:"admin" validate:"-"`
}

// Group is a community space with its own posts.
type Group struct {
	ID          string    `json:"_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description,omitempty"`
	CoverImage  string    `json:"coverImage,omitempty"`
	IsPrivate   bool      `json:"isPrivate"`
	Admin       UserRef   `json:"admin"`
	Members     []UserRef `json:"members" validate:"dive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	return slices.ContainsFunc(g.Members, func(m UserRef) bool { return m.ID == userID })
}

// IsAdmin reports whether userID administers the group.
func (g *Group) IsAdmin(userID string) bool {
	return userID != "" && g.Admin.ID == userID
}

// GroupInput is the body of POST /groups.
type GroupInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
}

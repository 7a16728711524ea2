package domain

import (
	"slices"
	"time"
)

// Media types a post can carry.
const (
	MediaPhoto = "Photo"
	MediaVideo = "Video"
)

// Post is a feed item.
type Post struct {
	ID          string    `json:"_id" validate:"required"`
	Author      UserRef   `json:"user" validate:"-"` // null once the author deleted their account
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	MediaType   string    `json:"mediaType,omitempty" validate:"omitempty,oneof=Photo Video"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments" validate:"dive"`
	Group       *GroupRef `json:"group,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LikedBy is a set-membership test on the likes list.
func (p *Post) LikedBy(userID string) bool {
	return userID != "" && slices.Contains(p.Likes, userID)
}

// LikeCount returns the number of likes.
func (p *Post) LikeCount() int {
	return len(p.Likes)
}

// GroupAdmin reports whether userID administers the group the post belongs to.
func (p *Post) GroupAdmin(userID string) bool {
	return p.Group != nil && p.Group.Admin.ID != "" && p.Group.Admin.ID == userID
}

// CanModify reports whether userID may edit or delete the post.
func (p *Post) CanModify(userID string) bool {
	return userID != "" && (p.Author.ID == userID || p.GroupAdmin(userID))
}

// Comment is a reply on a post.
type Comment struct {
	ID        string    `json:"_id" validate:"required"`
	Author    UserRef   `json:"user" validate:"-"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostUpdate is the body of PUT /posts/:id.
type PostUpdate struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	MediaType   string `json:"mediaType,omitempty" validate:"omitempty,oneof=Photo Video"`
}

// MediaTypeFor maps a content type to Photo or Video.
func MediaTypeFor(contentType string) string {
	if len(contentType) >= 6 && contentType[:6] == "video/" {
		return MediaVideo
	}
	return MediaPhoto
}

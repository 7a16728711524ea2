// Package domain contains core domain types for the castline client.
package domain

import (
	"slices"
	"time"
)

// Roles a member can register with.
const (
	RoleActor           = "Actor"
	RoleModel           = "Model"
	RoleFilmmaker       = "Filmmaker"
	RoleDirector        = "Director"
	RoleWriter          = "Writer"
	RolePhotographer    = "Photographer"
	RoleEditor          = "Editor"
	RoleMusician        = "Musician"
	RoleCreator         = "Creator"
	RoleStudent         = "Student"
	RoleProductionHouse = "Production House"
)

// Roles lists every selectable role in display order.
var Roles = []string{
	RoleActor, RoleModel, RoleFilmmaker, RoleDirector, RoleWriter,
	RolePhotographer, RoleEditor, RoleMusician, RoleCreator, RoleStudent,
	RoleProductionHouse,
}

// AllRoles is the leaderboard filter value meaning "no role filter".
const AllRoles = "All Roles"

// IsRole reports whether role is one of Roles.
func IsRole(role string) bool {
	return slices.Contains(Roles, role)
}

// User is a platform member as returned by the backend.
type User struct {
	ID                string    `json:"_id" validate:"required"`
	FullName          string    `json:"fullName" validate:"required"`
	Email             string    `json:"email,omitempty"`
	Role              string    `json:"role,omitempty"`
	Avatar            string    `json:"avatar,omitempty"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	Location          string    `json:"location,omitempty"`
	Skills            []string  `json:"skills,omitempty"`
	ResumeURL         string    `json:"resumeUrl,omitempty"`
	Followers         []string  `json:"followers,omitempty"`
	Following         []string  `json:"following,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Normalize fills Avatar from ProfilePictureURL when the backend only sent the latter.
func (u *User) Normalize() {
	if u.Avatar == "" && u.ProfilePictureURL != "" {
		u.Avatar = u.ProfilePictureURL
	}
}

// FollowedBy reports whether userID is among the user's followers.
func (u *User) FollowedBy(userID string) bool {
	return slices.Contains(u.Followers, userID)
}

// Ref returns the short reference form of the user.
func (u *User) Ref() UserRef {
	return UserRef{
		ID:                u.ID,
		FullName:          u.FullName,
		Role:              u.Role,
		Avatar:            u.Avatar,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// ProfileUpdate is the body of PUT /users/me. Empty fields are left unchanged.
type ProfileUpdate struct {
	Bio               string   `json:"bio,omitempty"`
	Location          string   `json:"location,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	ProfilePictureURL string   `json:"profilePictureUrl,omitempty"`
	ResumeURL         string   `json:"resumeUrl,omitempty"`
}

// Profile is the GET /users/:id payload.
type Profile struct {
	User  User   `json:"user"`
	Posts []Post `json:"posts" validate:"dive"`
}

// SearchQuery filters GET /users/search.
type SearchQuery struct {
	Query    string
	Role     string
	Location string
}

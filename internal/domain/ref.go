package domain

import (
	"bytes"

	"github.com/goccy/go-json"
)

// UserRef is a reference to a user. The backend sends it either as a bare
// id string or as a populated user document; both decode into UserRef.
type UserRef struct {
	ID                string `json:"_id" validate:"required"`
	FullName          string `json:"fullName,omitempty"`
	Role              string `json:"role,omitempty"`
	Avatar            string `json:"avatar,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// UnmarshalJSON accepts a string id, null, or an object.
func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain UserRef
	return json.Unmarshal(data, (*plain)(r))
}

// DisplayAvatar returns the avatar, falling back to the profile picture URL.
func (r UserRef) DisplayAvatar() string {
	if r.Avatar != "" {
		return r.Avatar
	}
	return r.ProfilePictureURL
}

// Normalize fills Avatar from ProfilePictureURL.
func (r *UserRef) Normalize() {
	r.Avatar = r.DisplayAvatar()
}

package domain

import "time"

// CastingCallRef is the casting call summary embedded in a notification.
type CastingCallRef struct {
	ID           string `json:"_id" validate:"required"`
	ProjectTitle string `json:"projectTitle"`
	ProjectType  string `json:"projectType,omitempty"`
	RoleType     string `json:"roleType,omitempty"`
}

// CastingCall is an open role posted by a member.
type CastingCall struct {
	ID                  string    `json:"_id" validate:"required"`
	Author              UserRef   `json:"user" validate:"-"`
	ProjectTitle        string    `json:"projectTitle" validate:"required"`
	ProjectType         string    `json:"projectType"`
	RoleDescription     string    `json:"roleDescription"`
	RoleType            string    `json:"roleType"`
	Location            string    `json:"location"`
	ApplicationDeadline time.Time `json:"applicationDeadline"`
	ContactEmail        string    `json:"contactEmail,omitempty"`
	Applicants          []string  `json:"applicants,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// Open reports whether applications are still accepted at now.
func (c *CastingCall) Open(now time.Time) bool {
	return c.ApplicationDeadline.IsZero() || now.Before(c.ApplicationDeadline)
}

// CastingCallInput is the body of POST /casting-calls.
type CastingCallInput struct {
	ProjectTitle        string    `json:"projectTitle" validate:"required"`
	ProjectType         string    `json:"projectType" validate:"required"`
	RoleDescription     string    `json:"roleDescription" validate:"required"`
	RoleType            string    `json:"roleType" validate:"required"`
	Location            string    `json:"location" validate:"required"`
	ApplicationDeadline time.Time `json:"applicationDeadline" validate:"required"`
	ContactEmail        string    `json:"contactEmail" validate:"required,email"`
}

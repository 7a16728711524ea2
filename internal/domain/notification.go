package domain

import "time"

// Notification statuses. Nothing in the client transitions a status.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
)

// NotificationApplication is the only notification type the backend emits.
const NotificationApplication = "application"

// Notification tells a casting call owner that someone applied.
type Notification struct {
	ID          string         `json:"_id" validate:"required"`
	Applicant   UserRef        `json:"applicant"`
	Recipient   UserRef        `json:"recipient" validate:"-"`
	CastingCall CastingCallRef `json:"castingCall"`
	Type        string         `json:"type" validate:"required"`
	Status      string         `json:"status" validate:"oneof=unread read"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Unread reports whether the server marked the notification unread.
func (n *Notification) Unread() bool {
	return n.Status == StatusUnread
}

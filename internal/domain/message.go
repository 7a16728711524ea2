package domain

import (
	"slices"
	"time"
)

// Conversation is a thread between participants.
type Conversation struct {
	ID           string    `json:"_id" validate:"required"`
	Participants []UserRef `json:"participants" validate:"dive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the conversation.
func (c *Conversation) HasParticipant(userID string) bool {
	return slices.ContainsFunc(c.Participants, func(p UserRef) bool { return p.ID == userID })
}

// Other returns the first participant that is not selfID.
func (c *Conversation) Other(selfID string) (UserRef, bool) {
	for _, p := range c.Participants {
		if p.ID != selfID {
			return p, true
		}
	}
	return UserRef{}, false
}

// Message is one entry of a conversation transcript. Transient marks
// messages that arrived over the live channel and have no server record.
type Message struct {
	ID             string    `json:"_id" validate:"required"`
	ConversationID string    `json:"conversationId,omitempty"`
	Sender         UserRef   `json:"sender"`
	Receiver       UserRef   `json:"receiver" validate:"-"`
	Text           string    `json:"text" validate:"required"`
	CreatedAt      time.Time `json:"createdAt"`
	Transient      bool      `json:"-"`
}

// SentBy reports whether userID authored the message.
func (m *Message) SentBy(userID string) bool {
	return m.Sender.ID == userID
}

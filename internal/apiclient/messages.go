package apiclient

import (
	"context"
	"net/http"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// OutgoingMessage is the body of POST /messages.
type OutgoingMessage struct {
	ConversationID string `json:"conversationId" validate:"required"`
	Receiver       string `json:"receiver" validate:"required"`
	Text           string `json:"text" validate:"required"`
}

// ListConversations returns the session user's conversations.
func (c *Client) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	if err := c.get(ctx, "/messages/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// StartConversation finds or creates the conversation with receiverID.
func (c *Client) StartConversation(ctx context.Context, receiverID string) (domain.Conversation, error) {
	if receiverID == "" {
		return domain.Conversation{}, validation.Field("receiverId", "is required")
	}
	body := struct {
		ReceiverID string `json:"receiverId"`
	}{receiverID}
	var conv domain.Conversation
	if err := c.send(ctx, http.MethodPost, "/messages/conversations", body, &conv); err != nil {
		return domain.Conversation{}, err
	}
	return conv, nil
}

// ListMessages returns a conversation's durable history.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := c.get(ctx, "/messages/"+escape(conversationID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage persists a message and returns the stored record.
func (c *Client) SendMessage(ctx context.Context, msg OutgoingMessage) (domain.Message, error) {
	if err := validation.Struct(msg); err != nil {
		return domain.Message{}, err
	}
	var stored domain.Message
	if err := c.send(ctx, http.MethodPost, "/messages", msg, &stored); err != nil {
		return domain.Message{}, err
	}
	return stored, nil
}

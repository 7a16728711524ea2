package apiclient

import (
	"context"
	"net/http"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// ListCastingCalls returns open casting calls.
func (c *Client) ListCastingCalls(ctx context.Context) ([]domain.CastingCall, error) {
	var calls []domain.CastingCall
	if err := c.get(ctx, "/casting-calls", nil, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// CreateCastingCall posts a casting call owned by the session user.
func (c *Client) CreateCastingCall(ctx context.Context, in domain.CastingCallInput) (domain.CastingCall, error) {
	if err := validation.Struct(in); err != nil {
		return domain.CastingCall{}, err
	}
	var call domain.CastingCall
	if err := c.send(ctx, http.MethodPost, "/casting-calls", in, &call); err != nil {
		return domain.CastingCall{}, err
	}
	return call, nil
}

// ApplyToCastingCall applies the session user to a casting call. The owner
// receives an application notification.
func (c *Client) ApplyToCastingCall(ctx context.Context, callID string) error {
	return c.send(ctx, http.MethodPost, "/casting-calls/"+escape(callID)+"/apply", struct{}{}, nil)
}

// ListNotifications returns the session user's notifications.
func (c *Client) ListNotifications(ctx context.Context) ([]domain.Notification, error) {
	var items []domain.Notification
	if err := c.get(ctx, "/casting-calls/notifications", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

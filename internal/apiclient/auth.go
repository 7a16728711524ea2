package apiclient

import (
	"context"
	"net/http"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,role"`
}

// authResponse is the login payload: the user document with the token beside it.
type authResponse struct {
	domain.User
	Token string `json:"token" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (domain.Session, error) {
	if err := validation.Struct(creds); err != nil {
		return domain.Session{}, err
	}
	var resp authResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: creds}, &resp); err != nil {
		return domain.Session{}, err
	}
	resp.User.Normalize()
	return domain.Session{User: resp.User, Token: resp.Token}, nil
}

// Register creates an account. It does not log the new member in.
func (c *Client) Register(ctx context.Context, reg Registration) (string, error) {
	if err := validation.Struct(reg); err != nil {
		return "", err
	}
	var resp messageResponse
	if err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: reg}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ChangePassword updates the session user's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=6"`
	}{current, next}
	if err := validation.Struct(body); err != nil {
		return err
	}
	return c.send(ctx, http.MethodPut, "/auth/change-password", body, nil)
}

// ChangeEmail updates the session user's email and returns the stored address.
func (c *Client) ChangeEmail(ctx context.Context, newEmail, password string) (string, error) {
	body := struct {
		NewEmail string `json:"newEmail" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}{newEmail, password}
	if err := validation.Struct(body); err != nil {
		return "", err
	}
	var resp struct {
		NewEmail string `json:"newEmail" validate:"required"`
	}
	if err := c.send(ctx, http.MethodPut, "/auth/change-email", body, &resp); err != nil {
		return "", err
	}
	return resp.NewEmail, nil
}

// DeleteAccount permanently removes the session user's account.
func (c *Client) DeleteAccount(ctx context.Context, password string) error {
	if password == "" {
		return validation.Field("password", "is required")
	}
	body := struct {
		Password string `json:"password"`
	}{password}
	return c.send(ctx, http.MethodDelete, "/auth/delete-account", body, nil)
}

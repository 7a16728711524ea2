// Package account covers the member's own account: signing in and out,
// registration, profile edits and the settings actions.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
)

// Fallback messages shown when the server sends none.
const (
	MsgLoginFailed          = "Login failed. Please check your credentials."
	MsgRegisterFailed       = "Registration failed. Please try again."
	MsgPasswordsMismatch    = "New passwords do not match."
	MsgChangePasswordFailed = "Failed to change password."
	MsgChangeEmailFailed    = "Failed to change email."
	MsgDeleteFailed         = "Failed to delete account."
	MsgUpdateProfileFailed  = "Failed to update profile. Please try again."
	MsgAvatarFailed         = "Failed to upload profile picture."
	MsgResumeFailed         = "Failed to upload resume."
)

// API is the subset of the request client the account actions use.
type API interface {
	Login(ctx context.Context, creds apiclient.Credentials) (domain.Session, error)
	Register(ctx context.Context, reg apiclient.Registration) (string, error)
	ChangePassword(ctx context.Context, current, next string) error
	ChangeEmail(ctx context.Context, newEmail, password string) (string, error)
	DeleteAccount(ctx context.Context, password string) error
	UpdateMe(ctx context.Context, upd domain.ProfileUpdate) (domain.User, error)
	UploadAvatar(ctx context.Context, file apiclient.Upload) (string, error)
	UploadResume(ctx context.Context, file apiclient.Upload) (string, error)
}

// Sessions is the writable side of the session store.
type Sessions interface {
	Current() (domain.Session, bool)
	Login(ctx context.Context, sess domain.Session) error
	UpdateUser(ctx context.Context, user domain.User) error
	Logout(ctx context.Context) error
}

// Service runs account actions against the API and keeps the session in step.
type Service struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(api API, sessions Sessions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, sessions: sessions, logger: logger}
}

// Login signs in and stores the session.
func (s *Service) Login(ctx context.Context, creds apiclient.Credentials) (domain.Session, error) {
	sess, err := s.api.Login(ctx, creds)
	if err != nil {
		return domain.Session{}, err
	}
	if err := s.sessions.Login(ctx, sess); err != nil {
		return domain.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Logout drops the session.
func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}

// Register creates an account and returns the server's confirmation. The
// new member still has to sign in.
func (s *Service) Register(ctx context.Context, reg apiclient.Registration) (string, error) {
	return s.api.Register(ctx, reg)
}

// ChangePassword checks the confirmation locally before calling the server.
func (s *Service) ChangePassword(ctx context.Context, current, next, confirm string) error {
	if _, ok := s.sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	if next != confirm {
		return validation.Field("", MsgPasswordsMismatch)
	}
	return s.api.ChangePassword(ctx, current, next)
}

// ChangeEmail updates the address on the server and in the stored session.
func (s *Service) ChangeEmail(ctx context.Context, newEmail, password string) (string, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return "", apiclient.ErrAuthRequired
	}
	stored, err := s.api.ChangeEmail(ctx, newEmail, password)
	if err != nil {
		return "", err
	}
	user := sess.User
	user.Email = stored
	if err := s.sessions.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("Failed to store updated email", "user_id", user.ID, "error", err)
	}
	return stored, nil
}

// DeleteAccount removes the account and then signs out.
func (s *Service) DeleteAccount(ctx context.Context, password string) error {
	if _, ok := s.sessions.Current(); !ok {
		return apiclient.ErrAuthRequired
	}
	if err := s.api.DeleteAccount(ctx, password); err != nil {
		return err
	}
	return s.sessions.Logout(ctx)
}

// ProfileEdit is an edit of the member's own profile. Avatar and Resume are
// uploaded first; their URLs then go into the update.
type ProfileEdit struct {
	Update domain.ProfileUpdate
	Avatar *apiclient.Upload
	Resume *apiclient.Upload
}

// EditProfile applies edit and rewrites the stored user with the result.
// It returns the fallback message matching the step that failed.
func (s *Service) EditProfile(ctx context.Context, edit ProfileEdit) (domain.User, string, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return domain.User{}, "", apiclient.ErrAuthRequired
	}
	upd := edit.Update
	if edit.Avatar != nil {
		url, err := s.api.UploadAvatar(ctx, *edit.Avatar)
		if err != nil {
			return domain.User{}, MsgAvatarFailed, err
		}
		upd.ProfilePictureURL = url
	}
	if edit.Resume != nil {
		url, err := s.api.UploadResume(ctx, *edit.Resume)
		if err != nil {
			return domain.User{}, MsgResumeFailed, err
		}
		upd.ResumeURL = url
	}

	user, err := s.api.UpdateMe(ctx, upd)
	if err != nil {
		return domain.User{}, MsgUpdateProfileFailed, err
	}
	// Older backends omit _id on PUT /users/me.
	if user.ID == "" {
		user.ID = sess.UserID()
	}
	if err := s.sessions.UpdateUser(ctx, user); err != nil {
		return domain.User{}, MsgUpdateProfileFailed, err
	}
	return user, "", nil
}

package devserver

import (
	"errors"
	"net/http"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/identity"
)

type registerRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,role"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	domain.User
	Token string `json:"token"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	u, err := s.state.Register(req.FullName, req.Email, req.Password, req.Role)
	if errors.Is(err, ErrConflict) {
		Error(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		s.fail(w, err, "")
		return
	}
	s.logger.Info("User registered", "user_id", u.ID, "role", u.Role)
	JSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	u, ok := s.state.Authenticate(req.Email, req.Password)
	if !ok {
		s.logger.Info("Login refused", "ip", identity.IPFromRequest(r))
		Error(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, loginResponse{User: u, Token: token})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=6"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.state.ChangePassword(userID(r), req.CurrentPassword, req.NewPassword); err != nil {
		s.fail(w, err, "Current password is incorrect")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (s *Server) changeEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewEmail string `json:"newEmail" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	email, err := s.state.ChangeEmail(userID(r), req.NewEmail, req.Password)
	switch {
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusBadRequest, "Incorrect password")
		return
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusBadRequest, "Email already in use")
		return
	case err != nil:
		s.fail(w, err, "User not found")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Email updated successfully", "newEmail": email})
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := userID(r)
	if err := s.state.DeleteAccount(id, req.Password); err != nil {
		if errors.Is(err, ErrForbidden) {
			Error(w, http.StatusBadRequest, "Incorrect password")
			return
		}
		s.fail(w, err, "User not found")
		return
	}
	s.reg.CloseUser(id)
	s.logger.Info("Account deleted", "user_id", id)
	JSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}

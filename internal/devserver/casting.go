package devserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/castline/internal/domain"
)

func (s *Server) listCastingCalls(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, s.state.CastingCalls())
}

func (s *Server) createCastingCall(w http.ResponseWriter, r *http.Request) {
	var in domain.CastingCallInput
	if !decode(w, r, &in) {
		return
	}
	JSON(w, http.StatusCreated, s.state.CreateCastingCall(userID(r), in))
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	err := s.state.Apply(userID(r), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, ErrConflict):
		Error(w, http.StatusBadRequest, "You have already applied")
		return
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusBadRequest, "Applications for this casting call are closed")
		return
	case err != nil:
		s.fail(w, err, "You cannot apply to your own casting call")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Application submitted"})
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.state.Notifications(userID(r)))
}

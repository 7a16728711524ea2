package devserver

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/castline/internal/domain"
)

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users := s.state.Search(domain.SearchQuery{
		Query:    q.Get("q"),
		Role:     q.Get("role"),
		Location: q.Get("location"),
	})
	if users == nil {
		users = []domain.User{}
	}
	JSON(w, http.StatusOK, users)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.state.Profile(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, p)
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	var upd domain.ProfileUpdate
	if !decode(w, r, &upd) {
		return
	}
	u, err := s.state.UpdateProfile(userID(r), upd)
	if err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, u)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	url, ok := s.receiveFile(w, r, "avatar")
	if !ok {
		return
	}
	if _, err := s.state.UpdateProfile(userID(r), domain.ProfileUpdate{ProfilePictureURL: url}); err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"profilePictureUrl": url})
}

func (s *Server) uploadResume(w http.ResponseWriter, r *http.Request) {
	url, ok := s.receiveFile(w, r, "resume")
	if !ok {
		return
	}
	if _, err := s.state.UpdateProfile(userID(r), domain.ProfileUpdate{ResumeURL: url}); err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"resumeUrl": url})
}

// receiveFile stores the required multipart file in field and returns its URL.
func (s *Server) receiveFile(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		Error(w, http.StatusBadRequest, "Invalid form data")
		return "", false
	}
	url, _, err := s.uploads.save(r, field)
	if errors.Is(err, errNoFile) {
		Error(w, http.StatusBadRequest, "No file uploaded")
		return "", false
	}
	if err != nil {
		s.fail(w, err, "")
		return "", false
	}
	return url, true
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	if err := s.state.SetFollow(userID(r), chi.URLParam(r, "id"), true); err != nil {
		s.fail(w, err, "Already following this user")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "User followed"})
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	if err := s.state.SetFollow(userID(r), chi.URLParam(r, "id"), false); err != nil {
		s.fail(w, err, "Not following this user")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "User unfollowed"})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.state.Leaderboard(r.URL.Query().Get("role")))
}

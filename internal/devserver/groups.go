package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/castline/internal/domain"
)

func (s *Server) listGroups(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, s.state.Groups())
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var in domain.GroupInput
	if !decode(w, r, &in) {
		return
	}
	JSON(w, http.StatusCreated, s.state.CreateGroup(userID(r), in))
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.state.Group(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, "")
		return
	}
	JSON(w, http.StatusOK, g)
}

func (s *Server) groupPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.state.GroupPosts(userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, "This group is private")
		return
	}
	JSON(w, http.StatusOK, posts)
}

func (s *Server) joinGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.state.SetMembership(userID(r), chi.URLParam(r, "id"), true); err != nil {
		s.fail(w, err, "Already a member")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Joined group"})
}

func (s *Server) leaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.state.SetMembership(userID(r), chi.URLParam(r, "id"), false); err != nil {
		s.fail(w, err, "Admin cannot leave the group")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Left group"})
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID string `json:"memberId" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := s.state.RemoveMember(userID(r), chi.URLParam(r, "id"), req.MemberID); err != nil {
		s.fail(w, err, "Only the admin can remove members")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Member removed"})
}

func (s *Server) groupCover(w http.ResponseWriter, r *http.Request) {
	url, ok := s.receiveFile(w, r, "coverImage")
	if !ok {
		return
	}
	g, err := s.state.SetGroupCover(userID(r), chi.URLParam(r, "id"), url)
	if err != nil {
		s.fail(w, err, "Only the admin can change the cover")
		return
	}
	JSON(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeleteGroup(userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, "Only the admin can delete the group")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Group deleted"})
}

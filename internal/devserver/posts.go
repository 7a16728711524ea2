package devserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/castline/internal/domain"
)

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.state.Feed(userID(r)))
}

// createPost accepts multipart form data. Without a title but with a file it
// only stores the media and returns its URL.
func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		Error(w, http.StatusBadRequest, "Invalid form data")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))

	mediaURL, contentType, err := s.uploads.save(r, "file")
	switch {
	case errors.Is(err, errNoFile):
	case err != nil:
		s.fail(w, err, "")
		return
	}
	mediaType := ""
	if mediaURL != "" {
		mediaType = mediaTypeOf(contentType)
	}

	if title == "" {
		if mediaURL == "" {
			Error(w, http.StatusBadRequest, "Title is required")
			return
		}
		JSON(w, http.StatusOK, map[string]string{"mediaUrl": mediaURL, "mediaType": mediaType})
		return
	}

	post, err := s.state.CreatePost(userID(r), title, r.FormValue("groupId"), mediaURL, mediaType)
	if err != nil {
		s.fail(w, err, "Only members can post in this group")
		return
	}
	JSON(w, http.StatusCreated, post)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var upd domain.PostUpdate
	if !decode(w, r, &upd) {
		return
	}
	post, err := s.state.UpdatePost(userID(r), chi.URLParam(r, "id"), upd)
	if err != nil {
		s.fail(w, err, "Not authorized to edit this post")
		return
	}
	JSON(w, http.StatusOK, post)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.state.DeletePost(userID(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err, "Not authorized to delete this post")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Post removed"})
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	likes, err := s.state.ToggleLike(userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, "Post not found")
		return
	}
	JSON(w, http.StatusOK, likes)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	comments, err := s.state.AddComment(userID(r), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		s.fail(w, err, "Post not found")
		return
	}
	JSON(w, http.StatusCreated, comments)
}

func (s *Server) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := s.state.DeleteComment(userID(r), chi.URLParam(r, "id"), chi.URLParam(r, "commentID"))
	if err != nil {
		s.fail(w, err, "Comment not found")
		return
	}
	JSON(w, http.StatusOK, map[string]string{"message": "Comment removed"})
}

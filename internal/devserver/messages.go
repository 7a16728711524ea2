package devserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, s.state.Conversations(userID(r)))
}

func (s *Server) startConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID string `json:"receiverId" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	conv, err := s.state.StartConversation(userID(r), req.ReceiverID)
	if err != nil {
		s.fail(w, err, "You cannot message yourself")
		return
	}
	JSON(w, http.StatusOK, conv)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.state.Messages(userID(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err, "Not a participant of this conversation")
		return
	}
	JSON(w, http.StatusOK, msgs)
}

// sendMessage only persists. Live delivery is the sender's socket event.
func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversationId" validate:"required"`
		Receiver       string `json:"receiver" validate:"required"`
		Text           string `json:"text" validate:"required"`
	}
	if !decode(w, r, &req) {
		return
	}
	msg, err := s.state.SendMessage(userID(r), req.ConversationID, req.Receiver, req.Text)
	if err != nil {
		s.fail(w, err, "Not a participant of this conversation")
		return
	}
	JSON(w, http.StatusCreated, msg)
}

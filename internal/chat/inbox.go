package chat

import (
	"context"
	"log/slog"
	"slices"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

const (
	MsgInboxNotAuthenticated = "Not authenticated. Please log in."
	MsgInboxLoadFailed       = "Failed to load conversations."
	MsgStartFailed           = "Failed to start new conversation."
	MsgMessageSelf           = "You cannot message yourself."
)

// InboxAPI is the subset of the request client the inbox uses.
type InboxAPI interface {
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	StartConversation(ctx context.Context, receiverID string) (domain.Conversation, error)
}

// Inbox lists the session user's conversations.
type Inbox struct {
	scope    *view.Scope
	api      InboxAPI
	sessions Sessions
	logger   *slog.Logger

	loading bool
	err     string
	convs   []domain.Conversation
}

// NewInbox creates an unmounted inbox.
func NewInbox(parent context.Context, api InboxAPI, sessions Sessions, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Inbox{
		scope:    view.NewScope(parent),
		api:      api,
		sessions: sessions,
		logger:   logger,
		loading:  true,
	}
}

// Mount loads the conversation list.
func (in *Inbox) Mount(ctx context.Context) error {
	if _, ok := in.sessions.Current(); !ok {
		in.scope.Update(func() {
			in.loading = false
			in.err = MsgInboxNotAuthenticated
		})
		return apiclient.ErrAuthRequired
	}

	convs, err := in.api.ListConversations(ctx)
	if err != nil {
		msg := apiclient.Report(in.logger, "load conversations", err, MsgInboxLoadFailed)
		in.scope.Update(func() {
			in.loading = false
			in.err = msg
		})
		return err
	}
	in.scope.Update(func() {
		in.loading = false
		in.err = ""
		in.convs = convs
	})
	return nil
}

// StartWith returns the conversation with recipientID, reusing a listed
// one when it exists and asking the server otherwise.
func (in *Inbox) StartWith(ctx context.Context, recipientID string) (domain.Conversation, error) {
	sess, ok := in.sessions.Current()
	if !ok {
		return domain.Conversation{}, apiclient.ErrAuthRequired
	}
	if recipientID == sess.UserID() {
		return domain.Conversation{}, validation.Field("", MsgMessageSelf)
	}

	var existing *domain.Conversation
	in.scope.Read(func() {
		for i := range in.convs {
			if in.convs[i].HasParticipant(recipientID) {
				c := in.convs[i]
				existing = &c
				return
			}
		}
	})
	if existing != nil {
		return *existing, nil
	}

	conv, err := in.api.StartConversation(ctx, recipientID)
	if err != nil {
		msg := apiclient.Report(in.logger, "start conversation", err, MsgStartFailed)
		in.scope.Update(func() { in.err = msg })
		return domain.Conversation{}, err
	}
	in.scope.Update(func() {
		in.convs = slices.DeleteFunc(in.convs, func(c domain.Conversation) bool { return c.ID == conv.ID })
		in.convs = append([]domain.Conversation{conv}, in.convs...)
	})
	return conv, nil
}

// Conversations returns the listed conversations, newest first as served.
func (in *Inbox) Conversations() []domain.Conversation {
	var out []domain.Conversation
	in.scope.Read(func() { out = slices.Clone(in.convs) })
	return out
}

// Loading reports whether the list is still loading.
func (in *Inbox) Loading() bool {
	var b bool
	in.scope.Read(func() { b = in.loading })
	return b
}

// Err returns the inline error.
func (in *Inbox) Err() string {
	var s string
	in.scope.Read(func() { s = in.err })
	return s
}

// Close tears the inbox down.
func (in *Inbox) Close() { in.scope.Close() }

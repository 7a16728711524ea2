package chat

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/config"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/validation"
	"github.com/ashureev/castline/internal/view"
)

// User-visible messages.
const (
	MsgLoadMessagesFailed = "Failed to load messages."
	MsgSendFailed         = "Failed to send message."
	MsgNoRecipient        = "Recipient not found in conversation."
	MsgLiveUnavailable    = "Live updates are unavailable; new messages appear after reopening."
)

// API is the subset of the request client a conversation uses.
type API interface {
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, msg apiclient.OutgoingMessage) (domain.Message, error)
}

// Sessions exposes the current session.
type Sessions interface {
	Current() (domain.Session, bool)
}

// Deps are the collaborators of a conversation view.
type Deps struct {
	API        API
	Sessions   Sessions
	NewChannel func() Channel
	// Delivery is config.DeliveryConfirmed (default) or config.DeliveryEager.
	Delivery string
	Logger   *slog.Logger
	Now      func() time.Time
	// OnAppend, when set, sees each live or stored message as it joins the
	// transcript. Loaded history does not pass through it.
	OnAppend func(domain.Message)
}

// ConversationView is one open conversation: a live channel, the inbound
// listener bound to it, and the transcript. Every view owns exactly one
// channel and one listener, both released by Close.
type ConversationView struct {
	scope   *view.Scope
	deps    Deps
	conv    domain.Conversation
	self    domain.Session
	channel Channel
	live    bool

	transcript []domain.Message
	loading    bool
	err        string
	notice     string
}

// OpenConversation opens the live channel, announces the session user,
// starts listening and loads the history. A channel that cannot connect
// only degrades the view; a history failure becomes its inline error.
func OpenConversation(ctx context.Context, deps Deps, conv domain.Conversation) (*ConversationView, error) {
	sess, ok := deps.Sessions.Current()
	if !ok {
		return nil, apiclient.ErrAuthRequired
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	v := &ConversationView{
		scope:   view.NewScope(ctx),
		deps:    deps,
		conv:    conv,
		self:    sess,
		loading: true,
	}
	logger := deps.Logger.With("conversation_id", conv.ID, "user_id", sess.UserID())

	if deps.NewChannel != nil {
		ch := deps.NewChannel()
		v.channel = ch
		v.scope.OnClose(func() {
			if err := ch.Close(); err != nil {
				logger.Debug("Failed to close chat channel", "error", err)
			}
		})

		if err := ch.Connect(v.scope.Context()); err != nil {
			logger.Warn("Chat channel unavailable", "error", err)
			v.notice = MsgLiveUnavailable
		} else {
			sub := ch.OnMessage(v.receive)
			v.scope.OnClose(sub.Unsubscribe)
			if err := ch.AddUser(v.scope.Context(), sess.UserID()); err != nil {
				logger.Warn("Failed to announce presence", "error", err)
			}
			v.live = true
		}
	}

	history, err := deps.API.ListMessages(v.scope.Context(), conv.ID)
	if err != nil {
		msg := apiclient.Report(logger, "load messages", err, MsgLoadMessagesFailed)
		v.scope.Update(func() {
			v.loading = false
			v.err = msg
		})
		return v, nil
	}

	v.scope.Update(func() {
		// Anything already in the transcript arrived live while loading.
		v.transcript = append(slices.Clone(history), v.transcript...)
		v.loading = false
	})
	return v, nil
}

// WithConversation opens conv, runs fn, and always closes the view.
func WithConversation(ctx context.Context, deps Deps, conv domain.Conversation, fn func(*ConversationView) error) error {
	v, err := OpenConversation(ctx, deps, conv)
	if err != nil {
		return err
	}
	defer v.Close()
	return fn(v)
}

// receive is the inbound listener. Messages whose sender is not a
// participant of this conversation are dropped.
func (v *ConversationView) receive(in Incoming) {
	if !v.conv.HasParticipant(in.SenderID) {
		v.deps.Logger.Debug("Dropping live message for another conversation",
			"conversation_id", v.conv.ID, "sender_id", in.SenderID)
		return
	}
	msg := domain.Message{
		ConversationID: v.conv.ID,
		Sender:         v.senderRef(in.SenderID),
		Receiver:       v.self.User.Ref(),
		Text:           in.Text,
		CreatedAt:      v.deps.Now(),
		Transient:      true,
	}
	appended := v.scope.Update(func() {
		v.transcript = append(v.transcript, msg)
	})
	if appended {
		v.notify(msg)
	}
}

func (v *ConversationView) senderRef(id string) domain.UserRef {
	for _, p := range v.conv.Participants {
		if p.ID == id {
			return p
		}
	}
	return domain.UserRef{ID: id}
}

// Send delivers text to the other participant.
//
// In confirmed mode (the default) the message is stored first and pushed
// live only after the server accepted it, so a failed store leaves no trace
// anywhere. In eager mode the live push happens first; if the store then
// fails the recipient may have seen a message that history will not contain.
func (v *ConversationView) Send(ctx context.Context, text string) error {
	_, err := v.Deliver(ctx, text)
	return err
}

// Deliver is Send that also returns the stored message.
func (v *ConversationView) Deliver(ctx context.Context, text string) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, validation.Field("text", "is required")
	}
	if _, ok := v.deps.Sessions.Current(); !ok {
		return domain.Message{}, apiclient.ErrAuthRequired
	}
	recipient, ok := v.conv.Other(v.self.UserID())
	if !ok {
		v.setErr(MsgNoRecipient)
		return domain.Message{}, validation.Field("", MsgNoRecipient)
	}

	live := Outgoing{SenderID: v.self.UserID(), ReceiverID: recipient.ID, Text: text}
	stored := apiclient.OutgoingMessage{ConversationID: v.conv.ID, Receiver: recipient.ID, Text: text}

	if v.deps.Delivery == config.DeliveryEager {
		v.push(ctx, live)
		return v.persist(ctx, stored)
	}

	msg, err := v.persist(ctx, stored)
	if err != nil {
		return domain.Message{}, err
	}
	v.push(ctx, live)
	return msg, nil
}

func (v *ConversationView) persist(ctx context.Context, out apiclient.OutgoingMessage) (domain.Message, error) {
	msg, err := v.deps.API.SendMessage(ctx, out)
	if err != nil {
		v.setErr(apiclient.Report(v.deps.Logger, "send message", err, MsgSendFailed))
		return domain.Message{}, err
	}
	appended := v.scope.Update(func() {
		v.transcript = append(v.transcript, msg)
		v.err = ""
	})
	if appended {
		v.notify(msg)
	}
	return msg, nil
}

func (v *ConversationView) notify(msg domain.Message) {
	if v.deps.OnAppend != nil {
		v.deps.OnAppend(msg)
	}
}

// push is best effort: the channel gives no delivery guarantee.
func (v *ConversationView) push(ctx context.Context, out Outgoing) {
	if !v.live || !v.scope.Live() {
		return
	}
	if err := v.channel.Send(ctx, out); err != nil {
		v.deps.Logger.Warn("Live push failed", "conversation_id", v.conv.ID, "error", err)
	}
}

func (v *ConversationView) setErr(msg string) {
	v.scope.Update(func() { v.err = msg })
}

// Conversation returns the open conversation.
func (v *ConversationView) Conversation() domain.Conversation { return v.conv }

// Transcript returns the messages in display order.
func (v *ConversationView) Transcript() []domain.Message {
	var out []domain.Message
	v.scope.Read(func() { out = slices.Clone(v.transcript) })
	return out
}

// Loading reports whether history is still loading.
func (v *ConversationView) Loading() bool {
	var b bool
	v.scope.Read(func() { b = v.loading })
	return b
}

// Err returns the inline error.
func (v *ConversationView) Err() string {
	var s string
	v.scope.Read(func() { s = v.err })
	return s
}

// Notice returns a non-fatal status line, e.g. when live updates are off.
func (v *ConversationView) Notice() string {
	var s string
	v.scope.Read(func() { s = v.notice })
	return s
}

// Live reports whether the live channel is connected.
func (v *ConversationView) Live() bool { return v.live }

// Close unsubscribes the listener and closes the channel. Idempotent.
func (v *ConversationView) Close() { v.scope.Close() }

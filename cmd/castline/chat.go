package main

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/app"
	"github.com/ashureev/castline/internal/chat"
	"github.com/ashureev/castline/internal/domain"
)

func (c *cli) conversationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"inbox"},
		Short:   "List your conversations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := c.openInbox(cmd.Context())
			if err != nil {
				return err
			}
			defer in.Close()
			sess, _ := c.app.Sessions().Current()
			return c.printer.Conversations(in.Conversations(), sess.UserID())
		},
	}
}

func (c *cli) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <user-id>",
		Short: "Chat live with a member; one line per message, Ctrl-D to leave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conv, err := c.conversationWith(ctx, args[0])
			if err != nil {
				return err
			}

			var mu sync.Mutex
			show := func(m domain.Message) {
				mu.Lock()
				defer mu.Unlock()
				_ = c.printer.Message(m)
			}
			deps := c.app.ChatDeps()
			deps.OnAppend = show

			return chat.WithConversation(ctx, deps, conv, func(v *chat.ConversationView) error {
				if err := screenErr(v.Err()); err != nil {
					return err
				}
				if v.Notice() != "" {
					_ = c.printer.Line("%s", v.Notice())
				}
				for _, m := range v.Transcript() {
					show(m)
				}
				return c.chatLoop(ctx, v)
			})
		},
	}
}

// chatLoop sends each input line until EOF or cancellation.
func (c *cli) chatLoop(ctx context.Context, v *chat.ConversationView) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := v.Send(ctx, line); err != nil {
				_ = c.printer.Line("! %s", cmp.Or(v.Err(), apiclient.UserMessage(err, chat.MsgSendFailed)))
			}
		}
	}
}

func (c *cli) messageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <user-id> <text>",
		Short: "Send one message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			conv, err := c.conversationWith(ctx, args[0])
			if err != nil {
				return err
			}
			return chat.WithConversation(ctx, c.app.ChatDeps(), conv, func(v *chat.ConversationView) error {
				msg, err := v.Deliver(ctx, strings.Join(args[1:], " "))
				if err != nil {
					return errors.New(cmp.Or(v.Err(), apiclient.UserMessage(err, chat.MsgSendFailed)))
				}
				return c.printer.Message(msg)
			})
		},
	}
}

func (c *cli) openInbox(ctx context.Context) (*chat.Inbox, error) {
	screen, err := c.open(ctx, app.RouteMessages)
	if err != nil {
		return nil, err
	}
	in := screen.(*chat.Inbox)
	if err := screenErr(in.Err()); err != nil {
		in.Close()
		return nil, err
	}
	return in, nil
}

func (c *cli) conversationWith(ctx context.Context, userID string) (domain.Conversation, error) {
	in, err := c.openInbox(ctx)
	if err != nil {
		return domain.Conversation{}, err
	}
	defer in.Close()
	conv, err := in.StartWith(ctx, userID)
	if err != nil {
		return domain.Conversation{}, errors.New(cmp.Or(in.Err(), apiclient.UserMessage(err, chat.MsgStartFailed)))
	}
	return conv, nil
}

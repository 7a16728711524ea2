// Package chat implements live messaging: a channel that carries transient
// messages between connected members, the per-conversation view that merges
// those with the durable history, and the conversation inbox.
package chat

import (
	"context"
	"errors"
	"sync"
)

// ErrChannelClosed is returned by operations on a closed channel.
var ErrChannelClosed = errors.New("chat channel closed")

// Channel is a live, at-most-once message transport. It has no queue,
// retry, reconnection or ordering guarantee beyond what the transport gives.
type Channel interface {
	// Connect opens the transport.
	Connect(ctx context.Context) error
	// AddUser announces that userID is present on this channel.
	AddUser(ctx context.Context, userID string) error
	// Send pushes a transient message towards msg.ReceiverID.
	Send(ctx context.Context, msg Outgoing) error
	// OnMessage registers h for inbound messages. Handlers are invoked
	// serially, in arrival order.
	OnMessage(h func(Incoming)) *Subscription
	// Close releases the transport. It is safe to call more than once.
	Close() error
}

// Subscription is returned by OnMessage.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func newSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Unsubscribe removes the handler. Later calls are no-ops.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// handlerSet is the registry shared by Channel implementations.
type handlerSet struct {
	mu       sync.Mutex
	nextID   uint64
	handlers map[uint64]func(Incoming)
	order    []uint64
}

func (hs *handlerSet) add(h func(Incoming)) *Subscription {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if hs.handlers == nil {
		hs.handlers = make(map[uint64]func(Incoming))
	}
	hs.nextID++
	id := hs.nextID
	hs.handlers[id] = h
	hs.order = append(hs.order, id)
	return newSubscription(func() { hs.remove(id) })
}

func (hs *handlerSet) remove(id uint64) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	delete(hs.handlers, id)
	for i, v := range hs.order {
		if v == id {
			hs.order = append(hs.order[:i], hs.order[i+1:]...)
			break
		}
	}
}

// dispatch calls every live handler in registration order.
func (hs *handlerSet) dispatch(in Incoming) {
	hs.mu.Lock()
	fns := make([]func(Incoming), 0, len(hs.order))
	for _, id := range hs.order {
		fns = append(fns, hs.handlers[id])
	}
	hs.mu.Unlock()

	for _, h := range fns {
		h(in)
	}
}

func (hs *handlerSet) count() int {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	return len(hs.handlers)
}

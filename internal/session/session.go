// Package session owns the single authenticated identity of the client and
// mirrors it into persistent local storage. All mutations go through Store,
// which keeps memory and storage equal after every transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/store"
	"github.com/ashureev/castline/internal/validation"
	"github.com/goccy/go-json"
)

// State is the lifecycle position of the session.
type State int

// Session states.
const (
	Hydrating State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNotAuthenticated is returned by operations that need a session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store is the session store. It is safe for concurrent use; writers are
// serialized so there is exactly one writer at a time.
type Store struct {
	mu      sync.RWMutex
	state   State
	current domain.Session
	storage store.Storage
	logger  *slog.Logger
}

// New returns a store in the Hydrating state. Call Hydrate before use.
func New(storage store.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		state:   Hydrating,
		storage: storage,
		logger:  logger,
	}
}

// Hydrate loads the persisted session. A missing or corrupt record leaves
// the store Unauthenticated; a corrupt record is also removed from storage.
// Hydrate only returns an error when storage itself cannot be read.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawUser, hasUser, err := s.storage.Get(ctx, store.KeyUser)
	if err != nil {
		s.state = Unauthenticated
		return fmt.Errorf("read stored user: %w", err)
	}
	token, hasToken, err := s.storage.Get(ctx, store.KeyToken)
	if err != nil {
		s.state = Unauthenticated
		return fmt.Errorf("read stored token: %w", err)
	}

	if !hasUser || !hasToken || token == "" {
		if hasUser || hasToken {
			s.discard(ctx, "incomplete session record")
		}
		s.state = Unauthenticated
		s.current = domain.Session{}
		return nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.discard(ctx, "stored user is not valid JSON", "error", err)
		s.state = Unauthenticated
		s.current = domain.Session{}
		return nil
	}
	if err := validation.Struct(user); err != nil {
		s.discard(ctx, "stored user is incomplete", "error", err)
		s.state = Unauthenticated
		s.current = domain.Session{}
		return nil
	}

	user.Normalize()
	s.current = domain.Session{User: user, Token: token}
	s.state = Authenticated
	s.logger.Debug("Session restored", "user_id", user.ID)
	return nil
}

// discard removes both keys after a bad record. Called with mu held.
func (s *Store) discard(ctx context.Context, reason string, attrs ...any) {
	s.logger.Warn("Discarding stored session: "+reason, attrs...)
	if err := s.storage.Delete(ctx, store.KeyUser, store.KeyToken); err != nil {
		s.logger.Warn("Failed to remove stored session", "error", err)
	}
}

// Login makes sess the current session. Storage is written first; memory is
// only updated once the write succeeded.
func (s *Store) Login(ctx context.Context, sess domain.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("login: %w", validation.Field("session", "needs a user id and a token"))
	}
	sess.User.Normalize()

	raw, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Put(ctx, map[string]string{
		store.KeyUser:  string(raw),
		store.KeyToken: sess.Token,
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	s.current = sess
	s.state = Authenticated
	s.logger.Info("Logged in", "user_id", sess.UserID())
	return nil
}

// UpdateUser replaces the stored user record and keeps the token.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	user.Normalize()
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticated {
		return ErrNotAuthenticated
	}
	if user.ID != s.current.User.ID {
		return fmt.Errorf("update user %s: session belongs to %s", user.ID, s.current.User.ID)
	}
	if err := s.storage.Put(ctx, map[string]string{store.KeyUser: string(raw)}); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	s.current.User = user
	return nil
}

// Logout clears the session. Storage is cleared first; on a storage failure
// the session stays as it was.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, store.KeyUser, store.KeyToken); err != nil {
		return fmt.Errorf("clear stored session: %w", err)
	}

	if s.state == Authenticated {
		s.logger.Info("Logged out", "user_id", s.current.UserID())
	}
	s.current = domain.Session{}
	s.state = Unauthenticated
	return nil
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns the session and whether one is active.
func (s *Store) Current() (domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return domain.Session{}, false
	}
	return s.current, true
}

// Token returns the bearer token, or "" when there is no session.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return ""
	}
	return s.current.Token
}

// UserID returns the session user's id, or "".
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != Authenticated {
		return ""
	}
	return s.current.User.ID
}

// Package devserver is an in-memory implementation of the backend REST API
// and chat socket. It backs local development and the end-to-end tests.
package devserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/ashureev/castline/internal/identity"
	"github.com/ashureev/castline/internal/middleware"
	"github.com/ashureev/castline/internal/relay"
	"github.com/ashureev/castline/internal/validation"
)

// Options configures a Server.
type Options struct {
	Secret         string
	TokenTTL       time.Duration // 0 = tokens never expire
	AllowedOrigins []string
	Seed           bool
	Logger         *slog.Logger
	Now            func() time.Time
	AccessLog      bool
	AuthRateLimit  int // requests per minute per IP on login/register; 0 = off
}

// Server wires the state, relay and router together.
type Server struct {
	state   *State
	faults  *Faults
	uploads *uploads
	reg     *relay.Registry
	issuer  *identity.Issuer
	logger  *slog.Logger
	handler http.Handler
}

// New builds a server. It fails only on an unusable signing secret.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	issuer, err := identity.NewIssuer(opts.Secret, opts.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		state:   NewState(opts.Now),
		faults:  &Faults{},
		uploads: newUploads(),
		reg:     relay.NewRegistry(opts.Logger),
		issuer:  issuer,
		logger:  opts.Logger,
	}
	if opts.Seed {
		if err := Seed(s.state); err != nil {
			return nil, err
		}
	}
	s.handler = s.routes(opts)
	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Faults returns the fault injector.
func (s *Server) Faults() *Faults { return s.faults }

// State returns the backing store.
func (s *Server) State() *State { return s.state }

// Registry returns the chat socket registry.
func (s *Server) Registry() *relay.Registry { return s.reg }

// IssueToken signs a token for userID, for tests that skip the login call.
func (s *Server) IssueToken(userID string) (string, error) { return s.issuer.Issue(userID) }

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if opts.AccessLog {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.Method(http.MethodGet, "/socket", relay.NewHandler(s.reg, opts.AllowedOrigins, s.logger))
	r.Get("/uploads/{name}", s.serveUpload)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.faults.Middleware("/api"))

		r.Group(func(r chi.Router) {
			if opts.AuthRateLimit > 0 {
				r.Use(httprate.Limit(opts.AuthRateLimit, time.Minute,
					httprate.WithKeyFuncs(httprate.KeyByIP),
					httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
						Error(w, http.StatusTooManyRequests, "Too many attempts, try again later")
					}),
				))
			}
			r.Post("/auth/register", s.register)
			r.Post("/auth/login", s.login)
		})

		r.Group(func(r chi.Router) {
			r.Use(identity.Middleware(s.issuer, func(_ context.Context, id string) bool {
				return s.state.Exists(id)
			}, func(w http.ResponseWriter, msg string) {
				Error(w, http.StatusUnauthorized, msg)
			}))

			r.Put("/auth/change-password", s.changePassword)
			r.Put("/auth/change-email", s.changeEmail)
			r.Delete("/auth/delete-account", s.deleteAccount)

			r.Get("/posts", s.listPosts)
			r.Post("/posts", s.createPost)
			r.Put("/posts/{id}", s.updatePost)
			r.Delete("/posts/{id}", s.deletePost)
			r.Put("/posts/{id}/like", s.toggleLike)
			r.Post("/posts/{id}/comment", s.addComment)
			r.Delete("/posts/{id}/comment/{commentID}", s.deleteComment)

			r.Get("/users/search", s.searchUsers)
			r.Put("/users/me", s.updateMe)
			r.Post("/users/upload/avatar", s.uploadAvatar)
			r.Post("/users/upload/resume", s.uploadResume)
			r.Get("/users/{id}", s.getProfile)
			r.Post("/users/{id}/follow", s.follow)
			r.Delete("/users/{id}/follow", s.unfollow)

			r.Get("/groups", s.listGroups)
			r.Post("/groups", s.createGroup)
			r.Get("/groups/{id}", s.getGroup)
			r.Delete("/groups/{id}", s.deleteGroup)
			r.Get("/groups/{id}/posts", s.groupPosts)
			r.Post("/groups/{id}/join", s.joinGroup)
			r.Post("/groups/{id}/leave", s.leaveGroup)
			r.Post("/groups/{id}/remove-member", s.removeMember)
			r.Put("/groups/{id}/cover", s.groupCover)

			r.Get("/casting-calls", s.listCastingCalls)
			r.Post("/casting-calls", s.createCastingCall)
			r.Get("/casting-calls/notifications", s.listNotifications)
			r.Post("/casting-calls/{id}/apply", s.apply)

			r.Get("/messages/conversations", s.listConversations)
			r.Post("/messages/conversations", s.startConversation)
			r.Get("/messages/{id}", s.listMessages)
			r.Post("/messages", s.sendMessage)

			r.Get("/leaderboard", s.leaderboard)
		})
	})

	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"message": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a {"message": ...} error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"message": message})
}

// fail maps a State error onto an HTTP status. msg describes refusals;
// missing resources always read "Not found".
func (s *Server) fail(w http.ResponseWriter, err error, msg string) {
	if msg == "" {
		msg = "Request refused"
	}
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, msg)
	case errors.Is(err, ErrConflict), errors.Is(err, ErrBadRequest):
		Error(w, http.StatusBadRequest, msg)
	default:
		s.logger.Error("Request failed", "error", err)
		Error(w, http.StatusInternalServerError, "Server error")
	}
}

// decode reads a JSON body into v and validates it.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validation.Struct(v); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			Error(w, http.StatusBadRequest, verr.First())
		} else {
			Error(w, http.StatusBadRequest, err.Error())
		}
		return false
	}
	return true
}

func userID(r *http.Request) string { return identity.UserIDFromContext(r.Context()) }

package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ashureev/castline/internal/domain"
	"github.com/neilotoole/slogt"
)

func newTestClient(t *testing.T, token string, h http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL+"/api", TokenFunc(func() string { return token }), WithLogger(slogt.New(t)))
	return c, &calls
}

func TestLogin_ReturnsSessionAndNormalizesAvatar(t *testing.T) {
	c, _ := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("login must not carry a token, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"email":"ava@example.com"`) {
			t.Errorf("body = %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id":"u1","fullName":"Ava Stone","profilePictureUrl":"/p.png","token":"tok"}`)
	})

	sess, err := c.Login(context.Background(), Credentials{Email: "ava@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sess.UserID() != "u1" || sess.DisplayName() != "Ava Stone" || sess.Token != "tok" {
		t.Errorf("session = %+v", sess)
	}
	if sess.User.Avatar != "/p.png" {
		t.Errorf("Avatar = %q, want profile picture fallback", sess.User.Avatar)
	}
}

func TestLogin_ValidationSkipsNetwork(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Login(context.Background(), Credentials{Email: "", Password: "x"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Login() error = %v, want ErrValidation", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request, got %d", calls.Load())
	}
}

func TestDo_AttachesBearerToken(t *testing.T) {
	c, _ := newTestClient(t, "tok-123", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `[{"_id":"p1","user":{"_id":"u1","fullName":"A"},"title":"t","likes":["u2"],"comments":[]}]`)
	})

	posts, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0].LikeCount() != 1 {
		t.Errorf("posts = %+v", posts)
	}
}

func TestListMessages_AcceptsMessagesWithoutReceiver(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"m1","conversationId":"c1","sender":"u1","text":"hi","createdAt":"2024-01-01T00:00:00Z"}]`)
	})

	msgs, err := c.ListMessages(context.Background(), "c1")
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 1 || !msgs[0].SentBy("u1") || msgs[0].Receiver.ID != "" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestListPosts_KeepsPostsOfDeletedAuthors(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"_id":"p1","user":{"_id":"u1"},"title":"a","likes":[],"comments":[]},`+
			`{"_id":"p2","user":null,"title":"b","likes":[],"comments":[{"_id":"c1","user":null,"text":"gone"}]}]`)
	})

	posts, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 || posts[1].Author.ID != "" || posts[1].CanModify("u1") {
		t.Errorf("posts = %+v", posts)
	}
}

func TestDo_AuthRequiredWithoutToken(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.ListNotifications(context.Background())
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("error = %v, want ErrAuthRequired", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request without a session, got %d", calls.Load())
	}
}

func TestDo_APIErrorCarriesServerMessage(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Not your post"}`)
	})

	err := c.DeletePost(context.Background(), "p1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "Not your post" {
		t.Errorf("apiErr = %+v", apiErr)
	}
	if got := UserMessage(err, "fallback"); got != "Not your post" {
		t.Errorf("UserMessage = %q", got)
	}
	if StatusCode(err) != http.StatusForbidden {
		t.Errorf("StatusCode = %d", StatusCode(err))
	}
}

func TestDo_APIErrorWithoutBodyUsesFallback(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListNotifications(context.Background())
	if got := UserMessage(err, "Failed to load notifications."); got != "Failed to load notifications." {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(base+"/api", TokenFunc(func() string { return "tok" }))
	_, err := c.ListPosts(context.Background())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestDo_SchemaMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"wrong json type", `{"posts":[]}`},
		{"missing id", `[{"user":{"_id":"u1"},"title":"t","likes":[],"comments":[]}]`},
		{"bad media type", `[{"_id":"p1","user":{"_id":"u1"},"mediaType":"Audio","likes":[],"comments":[]}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.ListPosts(context.Background())
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("error = %v, want *SchemaError", err)
			}
		})
	}
}

func TestCreatePost_Multipart(t *testing.T) {
	c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if r.FormValue("title") != "Headshot" || r.FormValue("groupId") != "g1" {
			t.Errorf("form = %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "head.jpg" || string(data) != "jpeg-bytes" {
			t.Errorf("file = %s %q", hdr.Filename, data)
		}
		_, _ = io.WriteString(w, `{"_id":"p9","user":{"_id":"u1"},"title":"Headshot","mediaType":"Photo","likes":[],"comments":[]}`)
	})

	post, err := c.CreatePost(context.Background(), NewPost{
		Title:   "Headshot",
		GroupID: "g1",
		Media:   &Upload{Name: "head.jpg", ContentType: "image/jpeg", Content: strings.NewReader("jpeg-bytes")},
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if post.ID != "p9" || post.MediaType != domain.MediaPhoto {
		t.Errorf("post = %+v", post)
	}
}

func TestLeaderboard_RoleQuery(t *testing.T) {
	tests := []struct {
		role      string
		wantQuery string
	}{
		{"", ""},
		{domain.AllRoles, ""},
		{"Production House", "role=Production+House"},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			c, _ := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.RawQuery != tt.wantQuery {
					t.Errorf("query = %q, want %q", r.URL.RawQuery, tt.wantQuery)
				}
				_, _ = io.WriteString(w, `[{"userId":"u1","fullName":"A","role":"Actor","totalLikes":3,"totalPosts":1,"engagementScore":4.5}]`)
			})
			entries, err := c.Leaderboard(context.Background(), tt.role)
			if err != nil || len(entries) != 1 {
				t.Fatalf("Leaderboard() = %v, %v", entries, err)
			}
		})
	}
}

func TestRegister_RejectsUnknownRoleAndShortPassword(t *testing.T) {
	c, calls := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.Register(context.Background(), Registration{
		FullName: "Ava", Email: "ava@example.com", Password: "123", Role: "Astronaut",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if !strings.Contains(err.Error(), "password") || !strings.Contains(err.Error(), "role") {
		t.Errorf("error = %q, want both password and role mentioned", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request, got %d", calls.Load())
	}
}

package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := iss.Issue("u1")
	if err != nil {
		t.Fatal(err)
	}
	got, err := iss.Verify(tok)
	if err != nil || got != "u1" {
		t.Fatalf("Verify() = %q, %v", got, err)
	}
}

func TestIssuer_Rejects(t *testing.T) {
	iss, _ := NewIssuer("test-secret", time.Hour)
	other, _ := NewIssuer("other-secret", time.Hour)
	foreign, _ := other.Issue("u1")

	expired, _ := NewIssuer("test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue("u1")

	for name, tok := range map[string]string{"garbage": "abc", "foreign": foreign, "expired": old} {
		t.Run(name, func(t *testing.T) {
			if _, err := iss.Verify(tok); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("expected error")
	}
}

func TestMiddleware(t *testing.T) {
	iss, _ := NewIssuer("test-secret", time.Hour)
	good, _ := iss.Issue("u1")
	ghost, _ := iss.Issue("ghost")

	known := func(_ context.Context, id string) bool { return id == "u1" }
	deny := func(w http.ResponseWriter, msg string) { http.Error(w, msg, http.StatusUnauthorized) }
	var seen string
	h := Middleware(iss, known, deny)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"unknown user", "Bearer " + ghost, http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusOK && seen != "u1" {
				t.Errorf("user id in context = %q", seen)
			}
		})
	}
}

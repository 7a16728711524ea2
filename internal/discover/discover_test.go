package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/neilotoole/slogt"
)

type fakeAPI struct {
	roles    []string
	queries  []domain.SearchQuery
	boardErr error
}

func (f *fakeAPI) Leaderboard(_ context.Context, role string) ([]domain.LeaderboardEntry, error) {
	f.roles = append(f.roles, role)
	if f.boardErr != nil {
		return nil, f.boardErr
	}
	return []domain.LeaderboardEntry{{UserID: "u1", Role: role}}, nil
}

func (f *fakeAPI) SearchUsers(_ context.Context, q domain.SearchQuery) ([]domain.User, error) {
	f.queries = append(f.queries, q)
	return []domain.User{{ID: "u1", FullName: "Ana"}}, nil
}

type fakeSessions struct{ ok bool }

func (f fakeSessions) Current() (domain.Session, bool) {
	if !f.ok {
		return domain.Session{}, false
	}
	return domain.Session{User: domain.User{ID: "me"}, Token: "tok"}, true
}

func TestLeaderboard_SelectRole(t *testing.T) {
	api := &fakeAPI{}
	l := NewLeaderboard(context.Background(), api, fakeSessions{ok: true}, slogt.New(t))
	defer l.Close()

	if err := l.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.SelectRole(context.Background(), domain.RoleActor); err != nil {
		t.Fatal(err)
	}
	if err := l.SelectRole(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	want := []string{domain.AllRoles, domain.RoleActor, domain.AllRoles}
	if diff := cmp.Diff(want, api.roles); diff != "" {
		t.Errorf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestLeaderboard_Errors(t *testing.T) {
	api := &fakeAPI{}
	l := NewLeaderboard(context.Background(), api, fakeSessions{}, slogt.New(t))
	defer l.Close()
	if err := l.Mount(context.Background()); !errors.Is(err, apiclient.ErrAuthRequired) {
		t.Fatalf("Mount() error = %v", err)
	}
	if l.Err() != MsgLeaderboardNotAuthenticated || len(api.roles) != 0 {
		t.Errorf("Err() = %q, requests = %d", l.Err(), len(api.roles))
	}

	api.boardErr = &apiclient.APIError{Status: 500, Message: "ranking offline"}
	l2 := NewLeaderboard(context.Background(), api, fakeSessions{ok: true}, slogt.New(t))
	defer l2.Close()
	_ = l2.Mount(context.Background())
	if l2.Err() != "ranking offline" {
		t.Errorf("Err() = %q, want server message", l2.Err())
	}
}

func TestSearch_Run(t *testing.T) {
	api := &fakeAPI{}
	s := NewSearch(context.Background(), api, fakeSessions{ok: true}, slogt.New(t))
	defer s.Close()

	if err := s.Run(context.Background(), domain.SearchQuery{Query: "  ", Role: domain.AllRoles}); err != nil {
		t.Fatal(err)
	}
	if len(api.queries) != 0 {
		t.Fatalf("empty search issued a request: %+v", api.queries)
	}

	if err := s.Run(context.Background(), domain.SearchQuery{Query: " ana ", Role: domain.AllRoles, Location: "Pune"}); err != nil {
		t.Fatal(err)
	}
	want := domain.SearchQuery{Query: "ana", Location: "Pune"}
	if diff := cmp.Diff(want, api.queries[0]); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	if len(s.Items()) != 1 {
		t.Errorf("Items() = %d, want 1", len(s.Items()))
	}
}

func TestSearch_NoSession(t *testing.T) {
	s := NewSearch(context.Background(), &fakeAPI{}, fakeSessions{}, slogt.New(t))
	defer s.Close()
	if err := s.Run(context.Background(), domain.SearchQuery{Query: "x"}); !errors.Is(err, apiclient.ErrAuthRequired) {
		t.Fatal(err)
	}
	if s.Err() != MsgSearchNotAuthenticated {
		t.Errorf("Err() = %q", s.Err())
	}
}

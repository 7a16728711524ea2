package casting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/neilotoole/slogt"
)

type fakeAPI struct {
	calls    []domain.CastingCall
	applyErr error
	applied  []string
	created  int
}

func (f *fakeAPI) ListCastingCalls(context.Context) ([]domain.CastingCall, error) {
	return f.calls, nil
}

func (f *fakeAPI) CreateCastingCall(_ context.Context, in domain.CastingCallInput) (domain.CastingCall, error) {
	f.created++
	c := domain.CastingCall{ID: "new", ProjectTitle: in.ProjectTitle}
	f.calls = append(f.calls, c)
	return c, nil
}

func (f *fakeAPI) ApplyToCastingCall(_ context.Context, id string) error {
	f.applied = append(f.applied, id)
	return f.applyErr
}

type fakeSessions struct{ id string }

func (f fakeSessions) Current() (domain.Session, bool) {
	if f.id == "" {
		return domain.Session{}, false
	}
	return domain.Session{User: domain.User{ID: f.id}, Token: "tok"}, true
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func board(t *testing.T, api *fakeAPI) *View {
	t.Helper()
	v := NewView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t))
	v.now = func() time.Time { return now }
	t.Cleanup(v.Close)
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return v
}

func TestApply(t *testing.T) {
	api := &fakeAPI{calls: []domain.CastingCall{
		{ID: "open", Author: domain.UserRef{ID: "dir"}, ApplicationDeadline: now.Add(24 * time.Hour)},
		{ID: "closed", Author: domain.UserRef{ID: "dir"}, ApplicationDeadline: now.Add(-time.Hour)},
		{ID: "mine", Author: domain.UserRef{ID: "me"}},
		{ID: "done", Author: domain.UserRef{ID: "dir"}, Applicants: []string{"me"}},
	}}
	v := board(t, api)

	if e, _ := v.Entry("done"); !e.Applied {
		t.Error("existing application not reflected")
	}

	if err := v.Apply(context.Background(), "open"); err != nil {
		t.Fatalf("Apply(open) error = %v", err)
	}
	if e, _ := v.Entry("open"); !e.Applied || e.Err != "" {
		t.Errorf("entry = %+v", e)
	}

	if err := v.Apply(context.Background(), "closed"); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("Apply(closed) error = %v", err)
	}
	if e, _ := v.Entry("closed"); e.Err != MsgClosed {
		t.Errorf("closed entry Err = %q", e.Err)
	}
	if err := v.Apply(context.Background(), "mine"); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("Apply(mine) error = %v", err)
	}

	if len(api.applied) != 1 || api.applied[0] != "open" {
		t.Errorf("applied = %v, want [open]", api.applied)
	}
}

func TestApply_Failure(t *testing.T) {
	api := &fakeAPI{
		calls:    []domain.CastingCall{{ID: "c1", Author: domain.UserRef{ID: "dir"}}},
		applyErr: &apiclient.APIError{Status: 500},
	}
	v := board(t, api)

	if err := v.Apply(context.Background(), "c1"); err == nil {
		t.Fatal("expected error")
	}
	e, _ := v.Entry("c1")
	if e.Applied || e.Err != MsgApplyFailed {
		t.Errorf("entry = %+v", e)
	}
}

func TestCreate_Refreshes(t *testing.T) {
	api := &fakeAPI{}
	v := board(t, api)

	if err := v.Create(context.Background(), domain.CastingCallInput{ProjectTitle: "Hamlet"}); err != nil {
		t.Fatal(err)
	}
	if len(v.Entries()) != 1 {
		t.Errorf("entries = %d, want 1", len(v.Entries()))
	}
}

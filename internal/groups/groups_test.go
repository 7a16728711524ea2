package groups

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/neilotoole/slogt"
)

type fakeAPI struct {
	group     domain.Group
	groups    []domain.Group
	posts     []domain.Post
	joinErr   error
	calls     []string
	removeErr error
}

func (f *fakeAPI) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeAPI) ListPosts(context.Context) ([]domain.Post, error) { return nil, nil }
func (f *fakeAPI) CreatePost(_ context.Context, in apiclient.NewPost) (domain.Post, error) {
	f.record("create:" + in.GroupID)
	return domain.Post{ID: "p-new", Title: in.Title, Author: domain.UserRef{ID: "me"}}, nil
}
func (f *fakeAPI) UploadPostMedia(context.Context, apiclient.Upload) (apiclient.MediaRef, error) {
	return apiclient.MediaRef{}, nil
}
func (f *fakeAPI) UpdatePost(context.Context, string, domain.PostUpdate) (domain.Post, error) {
	return domain.Post{}, nil
}
func (f *fakeAPI) DeletePost(context.Context, string) error { return nil }
func (f *fakeAPI) ToggleLike(context.Context, string) error { return nil }
func (f *fakeAPI) AddComment(context.Context, string, string) ([]domain.Comment, error) { return nil, nil }
func (f *fakeAPI) DeleteComment(context.Context, string, string) error { return nil }

func (f *fakeAPI) ListGroups(context.Context) ([]domain.Group, error) {
	f.record("list")
	return f.groups, nil
}
func (f *fakeAPI) CreateGroup(_ context.Context, in domain.GroupInput) (domain.Group, error) {
	g := domain.Group{ID: "g-" + in.Name, Name: in.Name}
	f.groups = append(f.groups, g)
	return g, nil
}
func (f *fakeAPI) GetGroup(context.Context, string) (domain.Group, error) {
	f.record("get")
	return f.group, nil
}
func (f *fakeAPI) ListGroupPosts(context.Context, string) ([]domain.Post, error) {
	f.record("posts")
	return f.posts, nil
}
func (f *fakeAPI) JoinGroup(context.Context, string) error {
	f.record("join")
	if f.joinErr != nil {
		return f.joinErr
	}
	f.group.Members = append(f.group.Members, domain.UserRef{ID: "me"})
	return nil
}
func (f *fakeAPI) LeaveGroup(context.Context, string) error {
	f.record("leave")
	f.group.Members = nil
	return nil
}
func (f *fakeAPI) RemoveMember(_ context.Context, _, id string) error {
	f.record("remove:" + id)
	return f.removeErr
}
func (f *fakeAPI) UploadGroupCover(_ context.Context, _ string, file apiclient.Upload) (domain.Group, error) {
	g := f.group
	g.CoverImage = "/uploads/" + file.Name
	return g, nil
}
func (f *fakeAPI) DeleteGroup(context.Context, string) error {
	f.record("delete")
	return nil
}

type fakeSessions struct{ id string }

func (f fakeSessions) Current() (domain.Session, bool) {
	if f.id == "" {
		return domain.Session{}, false
	}
	return domain.Session{User: domain.User{ID: f.id}, Token: "tok"}, true
}

func group(admin string, members ...string) domain.Group {
	g := domain.Group{ID: "g1", Name: "Improv", Admin: domain.UserRef{ID: admin}}
	for _, m := range members {
		g.Members = append(g.Members, domain.UserRef{ID: m})
	}
	return g
}

func TestListView_CreateReloads(t *testing.T) {
	api := &fakeAPI{}
	v := NewListView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t))
	defer v.Close()

	if err := v.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := v.Create(context.Background(), domain.GroupInput{Name: "Dancers"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := v.Groups(); len(got) != 1 || got[0].Name != "Dancers" {
		t.Errorf("Groups() = %+v", got)
	}
}

func TestListView_NoSessionNoFetch(t *testing.T) {
	api := &fakeAPI{}
	v := NewListView(context.Background(), api, fakeSessions{}, slogt.New(t))
	defer v.Close()

	if err := v.Mount(context.Background()); !errors.Is(err, apiclient.ErrAuthRequired) {
		t.Fatalf("Mount() error = %v", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v, want none", api.calls)
	}
}

func TestDetailView_JoinAndPost(t *testing.T) {
	api := &fakeAPI{group: group("admin"), posts: []domain.Post{{ID: "p1"}}}
	v := NewDetailView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t), "g1")
	defer v.Close()

	if err := v.Mount(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(v.Cards()) != 1 {
		t.Fatalf("cards = %d, want 1", len(v.Cards()))
	}
	if err := v.Post(context.Background(), apiclient.NewPost{Title: "hi"}); !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("non-member Post() error = %v", err)
	}

	if err := v.ToggleMembership(context.Background()); err != nil {
		t.Fatalf("ToggleMembership() error = %v", err)
	}
	if !v.State().IsMember {
		t.Fatal("expected membership after join")
	}
	if err := v.Post(context.Background(), apiclient.NewPost{Title: "hi"}); err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if cards := v.Cards(); len(cards) != 2 || cards[0].ID() != "p-new" {
		t.Errorf("new post should be first, got %d cards", len(cards))
	}
	if api.calls[len(api.calls)-1] != "create:g1" {
		t.Errorf("post not scoped to the group: %v", api.calls)
	}
}

func TestDetailView_JoinFailureSetsNotice(t *testing.T) {
	api := &fakeAPI{group: group("admin"), joinErr: &apiclient.APIError{Status: 500}}
	v := NewDetailView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t), "g1")
	defer v.Close()
	_ = v.Mount(context.Background())

	if err := v.ToggleMembership(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if v.State().Notice != MsgMembershipFailed {
		t.Errorf("Notice = %q", v.State().Notice)
	}
}

func TestDetailView_AdminActions(t *testing.T) {
	api := &fakeAPI{group: group("me", "me", "ana")}
	v := NewDetailView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t), "g1")
	defer v.Close()
	_ = v.Mount(context.Background())

	if err := v.ToggleMembership(context.Background()); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("admin leave err = %v", err)
	}
	if err := v.RemoveMember(context.Background(), "ana"); err != nil {
		t.Fatal(err)
	}
	if g := v.State().Group; g.IsMember("ana") {
		t.Error("ana still listed after removal")
	}
	if err := v.UploadCover(context.Background(), apiclient.Upload{Name: "c.png"}); err != nil {
		t.Fatal(err)
	}
	if v.State().Group.CoverImage != "/uploads/c.png" {
		t.Errorf("cover = %q", v.State().Group.CoverImage)
	}
	if err := v.DeleteGroup(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !v.State().Deleted {
		t.Error("Deleted = false")
	}
}

func TestDetailView_NonAdminRefused(t *testing.T) {
	api := &fakeAPI{group: group("admin", "admin", "me")}
	v := NewDetailView(context.Background(), api, fakeSessions{id: "me"}, slogt.New(t), "g1")
	defer v.Close()
	_ = v.Mount(context.Background())

	if err := v.DeleteGroup(context.Background()); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("DeleteGroup() err = %v", err)
	}
	if err := v.RemoveMember(context.Background(), "admin"); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("RemoveMember() err = %v", err)
	}
	for _, c := range api.calls {
		if c == "delete" || c == "remove:admin" {
			t.Errorf("admin call issued by non-admin: %v", api.calls)
		}
	}
}

package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/neilotoole/slogt"
)

type fakeAPI struct {
	profile   domain.Profile
	followErr error
	follows   int
	unfollows int
}

func (f *fakeAPI) GetProfile(context.Context, string) (domain.Profile, error) { return f.profile, nil }
func (f *fakeAPI) Follow(context.Context, string) error {
	f.follows++
	return f.followErr
}
func (f *fakeAPI) Unfollow(context.Context, string) error {
	f.unfollows++
	return f.followErr
}
func (f *fakeAPI) ListPosts(context.Context) ([]domain.Post, error) { return nil, nil }
func (f *fakeAPI) CreatePost(context.Context, apiclient.NewPost) (domain.Post, error) {
	return domain.Post{}, nil
}
func (f *fakeAPI) UploadPostMedia(context.Context, apiclient.Upload) (apiclient.MediaRef, error) {
	return apiclient.MediaRef{}, nil
}
func (f *fakeAPI) UpdatePost(context.Context, string, domain.PostUpdate) (domain.Post, error) {
	return domain.Post{}, nil
}
func (f *fakeAPI) DeletePost(context.Context, string) error { return nil }
func (f *fakeAPI) ToggleLike(context.Context, string) error { return nil }
func (f *fakeAPI) AddComment(context.Context, string, string) ([]domain.Comment, error) {
	return nil, nil
}
func (f *fakeAPI) DeleteComment(context.Context, string, string) error { return nil }

type sessions struct{ id string }

func (s sessions) Current() (domain.Session, bool) {
	if s.id == "" {
		return domain.Session{}, false
	}
	return domain.Session{User: domain.User{ID: s.id, FullName: "Viewer"}, Token: "t"}, true
}

func mounted(t *testing.T, api *fakeAPI, viewer string) *View {
	t.Helper()
	v := NewView(context.Background(), api, sessions{id: viewer}, slogt.New(t), "star")
	t.Cleanup(v.Close)
	if err := v.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return v
}

func starProfile(followers ...string) domain.Profile {
	return domain.Profile{
		User:  domain.User{ID: "star", FullName: "Star", Followers: followers},
		Posts: []domain.Post{{ID: "p1", Author: domain.UserRef{ID: "star"}}},
	}
}

func TestMount(t *testing.T) {
	v := mounted(t, &fakeAPI{profile: starProfile("me", "x")}, "me")
	st := v.State()
	if !st.Following || st.Followers != 2 || st.Self {
		t.Errorf("state = %+v", st)
	}
	if len(v.Cards()) != 1 {
		t.Errorf("cards = %d, want 1", len(v.Cards()))
	}
}

func TestToggleFollow_Success(t *testing.T) {
	api := &fakeAPI{profile: starProfile("x")}
	v := mounted(t, api, "me")

	if err := v.ToggleFollow(context.Background()); err != nil {
		t.Fatalf("ToggleFollow() error = %v", err)
	}
	if st := v.State(); !st.Following || st.Followers != 2 {
		t.Errorf("after follow: %+v", st)
	}
	if err := v.ToggleFollow(context.Background()); err != nil {
		t.Fatalf("ToggleFollow() error = %v", err)
	}
	if st := v.State(); st.Following || st.Followers != 1 {
		t.Errorf("after unfollow: %+v", st)
	}
	if api.follows != 1 || api.unfollows != 1 {
		t.Errorf("follows=%d unfollows=%d", api.follows, api.unfollows)
	}
}

func TestToggleFollow_FailureRollsBack(t *testing.T) {
	api := &fakeAPI{profile: starProfile("me"), followErr: &apiclient.APIError{Status: 400, Message: "Not following"}}
	v := mounted(t, api, "me")

	if err := v.ToggleFollow(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	st := v.State()
	if !st.Following || st.Followers != 1 {
		t.Errorf("after failed unfollow: %+v", st)
	}
	if st.Notice != "Not following" {
		t.Errorf("Notice = %q", st.Notice)
	}
}

func TestToggleFollow_Guards(t *testing.T) {
	api := &fakeAPI{profile: starProfile()}

	anon := mounted(t, api, "")
	if err := anon.ToggleFollow(context.Background()); !errors.Is(err, apiclient.ErrAuthRequired) {
		t.Errorf("anonymous toggle = %v", err)
	}
	if anon.State().Notice != MsgLoginToFollow {
		t.Errorf("Notice = %q", anon.State().Notice)
	}

	self := mounted(t, api, "star")
	if err := self.ToggleFollow(context.Background()); !errors.Is(err, apiclient.ErrValidation) {
		t.Errorf("self toggle = %v", err)
	}
	if api.follows+api.unfollows != 0 {
		t.Error("no request expected")
	}
}

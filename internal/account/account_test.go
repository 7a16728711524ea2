package account

import (
	"context"
	"errors"
	"testing"

	"github.com/ashureev/castline/internal/apiclient"
	"github.com/ashureev/castline/internal/domain"
	"github.com/ashureev/castline/internal/session"
	"github.com/ashureev/castline/internal/store"
	"github.com/neilotoole/slogt"
)

type fakeAPI struct {
	calls     []string
	deleteErr error
	avatarErr error
	lastUpd   domain.ProfileUpdate
}

func (f *fakeAPI) Login(_ context.Context, c apiclient.Credentials) (domain.Session, error) {
	f.calls = append(f.calls, "login")
	return domain.Session{User: domain.User{ID: "u1", FullName: "Ana", Email: c.Email}, Token: "tok"}, nil
}

func (f *fakeAPI) Register(context.Context, apiclient.Registration) (string, error) {
	return "User registered successfully", nil
}

func (f *fakeAPI) ChangePassword(context.Context, string, string) error {
	f.calls = append(f.calls, "password")
	return nil
}

func (f *fakeAPI) ChangeEmail(_ context.Context, email, _ string) (string, error) {
	return email, nil
}

func (f *fakeAPI) DeleteAccount(context.Context, string) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakeAPI) UpdateMe(_ context.Context, upd domain.ProfileUpdate) (domain.User, error) {
	f.lastUpd = upd
	return domain.User{ID: "u1", FullName: "Ana", Bio: upd.Bio, ProfilePictureURL: upd.ProfilePictureURL}, nil
}

func (f *fakeAPI) UploadAvatar(context.Context, apiclient.Upload) (string, error) {
	return "/uploads/a.png", f.avatarErr
}

func (f *fakeAPI) UploadResume(context.Context, apiclient.Upload) (string, error) {
	return "/uploads/cv.pdf", nil
}

func signedIn(t *testing.T, api *fakeAPI) (*Service, *session.Store, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemory()
	sessions := session.New(mem, slogt.New(t))
	if err := sessions.Hydrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	svc := NewService(api, sessions, slogt.New(t))
	if _, err := svc.Login(context.Background(), apiclient.Credentials{Email: "ana@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return svc, sessions, mem
}

func TestChangePassword_Mismatch(t *testing.T) {
	api := &fakeAPI{}
	svc, _, _ := signedIn(t, api)

	err := svc.ChangePassword(context.Background(), "old", "newpass", "newpas")
	if !errors.Is(err, apiclient.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if got := apiclient.UserMessage(err, MsgChangePasswordFailed); got != MsgPasswordsMismatch {
		t.Errorf("UserMessage = %q", got)
	}
	for _, c := range api.calls {
		if c == "password" {
			t.Fatal("server called despite mismatch")
		}
	}
}

func TestDeleteAccount_LogsOut(t *testing.T) {
	api := &fakeAPI{}
	svc, sessions, mem := signedIn(t, api)

	if err := svc.DeleteAccount(context.Background(), "secret"); err != nil {
		t.Fatal(err)
	}
	if sessions.State() != session.Unauthenticated {
		t.Errorf("state = %v, want Unauthenticated", sessions.State())
	}
	if len(mem.Snapshot()) != 0 {
		t.Errorf("storage = %v, want empty", mem.Snapshot())
	}
}

func TestDeleteAccount_FailureKeepsSession(t *testing.T) {
	api := &fakeAPI{deleteErr: &apiclient.APIError{Status: 401, Message: "Incorrect password"}}
	svc, sessions, _ := signedIn(t, api)

	err := svc.DeleteAccount(context.Background(), "wrong")
	if apiclient.UserMessage(err, MsgDeleteFailed) != "Incorrect password" {
		t.Errorf("err = %v", err)
	}
	if sessions.State() != session.Authenticated {
		t.Error("session dropped after failed delete")
	}
}

func TestEditProfile(t *testing.T) {
	api := &fakeAPI{}
	svc, sessions, _ := signedIn(t, api)

	user, _, err := svc.EditProfile(context.Background(), ProfileEdit{
		Update: domain.ProfileUpdate{Bio: "Stage actor"},
		Avatar: &apiclient.Upload{Name: "a.png"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if api.lastUpd.ProfilePictureURL != "/uploads/a.png" {
		t.Errorf("update carried %q", api.lastUpd.ProfilePictureURL)
	}
	cur, _ := sessions.Current()
	if cur.User.Bio != "Stage actor" || cur.User.Avatar != "/uploads/a.png" || cur.Token != "tok" {
		t.Errorf("session = %+v", cur)
	}
	if user.Bio != "Stage actor" {
		t.Errorf("user = %+v", user)
	}

	api.avatarErr = errors.New("disk full")
	_, msg, err := svc.EditProfile(context.Background(), ProfileEdit{Avatar: &apiclient.Upload{Name: "b.png"}})
	if err == nil || msg != MsgAvatarFailed {
		t.Errorf("msg = %q, err = %v", msg, err)
	}
}

func TestChangeEmail_UpdatesSession(t *testing.T) {
	svc, sessions, _ := signedIn(t, &fakeAPI{})
	if _, err := svc.ChangeEmail(context.Background(), "new@example.com", "secret"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := sessions.Current(); cur.User.Email != "new@example.com" {
		t.Errorf("email = %q", cur.User.Email)
	}
}

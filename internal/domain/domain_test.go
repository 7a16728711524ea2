package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

func TestUserRef_UnmarshalShapes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want UserRef
	}{
		{"bare id", `"u1"`, UserRef{ID: "u1"}},
		{"null", `null`, UserRef{}},
		{"populated", `{"_id":"u2","fullName":"Ana","profilePictureUrl":"/p.png"}`,
			UserRef{ID: "u2", FullName: "Ana", ProfilePictureURL: "/p.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got UserRef
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("UserRef mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMessage_SenderEitherShape(t *testing.T) {
	var msgs []Message
	raw := `[{"_id":"m1","sender":"u1","text":"hi"},{"_id":"m2","sender":{"_id":"u2","fullName":"Ben"},"text":"yo"}]`
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !msgs[0].SentBy("u1") || !msgs[1].SentBy("u2") {
		t.Errorf("senders = %q, %q", msgs[0].Sender.ID, msgs[1].Sender.ID)
	}
}

func TestPost_LikesAndModify(t *testing.T) {
	p := Post{
		ID:     "p1",
		Author: UserRef{ID: "author"},
		Likes:  []string{"a", "b"},
		Group:  &GroupRef{ID: "g1", Admin: UserRef{ID: "admin"}},
	}

	if !p.LikedBy("a") || p.LikedBy("") || p.LikedBy("c") {
		t.Error("LikedBy should be a membership test on likes")
	}
	if p.LikeCount() != 2 {
		t.Errorf("LikeCount() = %d, want 2", p.LikeCount())
	}
	for id, want := range map[string]bool{"author": true, "admin": true, "other": false, "": false} {
		if got := p.CanModify(id); got != want {
			t.Errorf("CanModify(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestConversation_Other(t *testing.T) {
	c := Conversation{ID: "c1", Participants: []UserRef{{ID: "me"}, {ID: "you"}}}

	other, ok := c.Other("me")
	if !ok || other.ID != "you" {
		t.Errorf("Other(me) = %v, %v", other, ok)
	}
	if c.HasParticipant("stranger") {
		t.Error("stranger should not be a participant")
	}
}

func TestMediaTypeFor(t *testing.T) {
	if got := MediaTypeFor("video/mp4"); got != MediaVideo {
		t.Errorf("MediaTypeFor(video/mp4) = %q", got)
	}
	if got := MediaTypeFor("image/png"); got != MediaPhoto {
		t.Errorf("MediaTypeFor(image/png) = %q", got)
	}
}

package devserver

import (
	"fmt"
	"time"

	"github.com/ashureev/castline/internal/domain"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "castline123"

type seedUser struct {
	name, email, role, location string
	skills                      []string
}

var seedUsers = []seedUser{
	{"Ana Ruiz", "ana@castline.dev", domain.RoleActor, "Madrid", []string{"stage combat", "flamenco"}},
	{"Ben Okafor", "ben@castline.dev", domain.RoleDirector, "Lagos", []string{"short film", "casting"}},
	{"Chloe Martin", "chloe@castline.dev", domain.RolePhotographer, "Lyon", []string{"headshots", "editorial"}},
}

// Seed fills an empty State with demo accounts, posts, a group and an open
// casting call.
func Seed(s *State) error {
	ids := make([]string, len(seedUsers))
	for i, su := range seedUsers {
		u, err := s.Register(su.name, su.email, SeedPassword, su.role)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", su.email, err)
		}
		if _, err := s.UpdateProfile(u.ID, domain.ProfileUpdate{Location: su.location, Skills: su.skills}); err != nil {
			return fmt.Errorf("seed profile %s: %w", su.email, err)
		}
		ids[i] = u.ID
	}
	ana, ben, chloe := ids[0], ids[1], ids[2]

	reel, err := s.CreatePost(ana, "New showreel is up", "", "", "")
	if err != nil {
		return fmt.Errorf("seed post: %w", err)
	}
	if _, err := s.CreatePost(chloe, "Golden hour headshots this weekend", "", "", ""); err != nil {
		return fmt.Errorf("seed post: %w", err)
	}
	for _, id := range []string{ben, chloe} {
		if _, err := s.ToggleLike(id, reel.ID); err != nil {
			return fmt.Errorf("seed like: %w", err)
		}
	}
	if _, err := s.AddComment(ben, reel.ID, "Great range in the second scene."); err != nil {
		return fmt.Errorf("seed comment: %w", err)
	}

	g := s.CreateGroup(ben, domain.GroupInput{Name: "Indie Film Makers", Description: "Crew calls and screenings"})
	if err := s.SetMembership(ana, g.ID, true); err != nil {
		return fmt.Errorf("seed membership: %w", err)
	}

	s.CreateCastingCall(ben, domain.CastingCallInput{
		ProjectTitle:        "Night Shift",
		ProjectType:         "Short Film",
		RoleDescription:     "Lead, late 20s, nurse on her last shift",
		RoleType:            "Lead",
		Location:            "Lagos",
		ApplicationDeadline: s.now().Add(30 * 24 * time.Hour),
		ContactEmail:        "ben@castline.dev",
	})

	conv, err := s.StartConversation(ana, ben)
	if err != nil {
		return fmt.Errorf("seed conversation: %w", err)
	}
	if _, err := s.SendMessage(ben, conv.ID, ana, "Saw your reel, are you free to read on Friday?"); err != nil {
		return fmt.Errorf("seed message: %w", err)
	}
	return nil
}

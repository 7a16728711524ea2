package view

import (
	"context"
	"testing"

	"github.com/ashureev/castline/internal/session"
)

type fixedState session.State

func (f fixedState) State() session.State { return session.State(f) }

func TestGuard_Check(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		route string
		want  Decision
	}{
		{"public while logged out", session.Unauthenticated, "/login", Decision{Outcome: Allow}},
		{"protected while logged out", session.Unauthenticated, "/feed", Decision{Outcome: Redirect, To: "/login"}},
		{"protected with query", session.Unauthenticated, "/messages?with=u2", Decision{Outcome: Redirect, To: "/login"}},
		{"protected while hydrating", session.Hydrating, "/notifications", Decision{Outcome: Loading}},
		{"protected while logged in", session.Authenticated, "/feed", Decision{Outcome: Allow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(fixedState(tt.state), "/login", "/register")
			if got := g.Check(tt.route); got != tt.want {
				t.Errorf("Check(%q) = %+v, want %+v", tt.route, got, tt.want)
			}
		})
	}
}

func TestScope_UpdateAfterCloseIsNoop(t *testing.T) {
	s := NewScope(context.Background())
	n := 0
	if !s.Update(func() { n++ }) {
		t.Fatal("Update on live scope should run")
	}
	s.Close()
	if s.Update(func() { n++ }) {
		t.Error("Update after Close should not run")
	}
	if n != 1 {
		t.Errorf("n = %d, want 1", n)
	}
	if s.Context().Err() == nil {
		t.Error("context should be cancelled after Close")
	}
}

func TestScope_CloseRunsHooksOnceInReverse(t *testing.T) {
	s := NewScope(context.Background())
	var order []int
	s.OnClose(func() { order = append(order, 1) })
	s.OnClose(func() { order = append(order, 2) })

	s.Close()
	s.Close()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("hook order = %v, want [2 1]", order)
	}

	ran := false
	s.OnClose(func() { ran = true })
	if !ran {
		t.Error("OnClose after Close should run immediately")
	}
	if s.Live() {
		t.Error("Live() = true after Close")
	}
}

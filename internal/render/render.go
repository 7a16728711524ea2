// Package render prints view state for the terminal client, either as
// aligned tables or as YAML.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"

	"github.com/ashureev/castline/internal/domain"
)

// Output formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Printer writes views in one format.
type Printer struct {
	w      io.Writer
	format string
	now    func() time.Time
}

// New returns a Printer. Unknown formats are rejected.
func New(w io.Writer, format string) (*Printer, error) {
	switch format {
	case "", FormatTable:
		format = FormatTable
	case FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatTable, FormatYAML)
	}
	return &Printer{w: w, format: format, now: time.Now}, nil
}

// YAML reports whether the printer emits YAML.
func (p *Printer) YAML() bool { return p.format == FormatYAML }

func (p *Printer) yaml(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = p.w.Write(out)
	return err
}

func (p *Printer) table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

// Since renders t relative to now, or "-" for the zero time.
func (p *Printer) Since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, p.now(), "ago", "from now")
}

// Line prints a status line. YAML output carries it as {message: ...}.
func (p *Printer) Line(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.YAML() {
		return p.yaml(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

// Session prints the signed-in member.
func (p *Printer) Session(s domain.Session) error {
	if p.YAML() {
		return p.yaml(s.User)
	}
	return p.table([]string{"ID", "NAME", "ROLE", "EMAIL"},
		[][]string{{s.UserID(), s.DisplayName(), s.Role(), s.User.Email}})
}

// PostRow is one feed card.
type PostRow struct {
	Post      domain.Post
	Liked     bool
	LikeCount int
	Comments  int
}

// Posts prints feed cards.
func (p *Printer) Posts(rows []PostRow) error {
	if p.YAML() {
		type item struct {
			domain.Post `yaml:",inline"`
			Liked       bool `json:"liked"`
		}
		items := make([]item, 0, len(rows))
		for _, r := range rows {
			items = append(items, item{Post: r.Post, Liked: r.Liked})
		}
		return p.yaml(items)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		heart := " "
		if r.Liked {
			heart = "*"
		}
		out = append(out, []string{
			r.Post.ID, r.Post.Author.FullName, truncate(r.Post.Title, 48),
			heart + humanize.Comma(int64(r.LikeCount)), fmt.Sprint(r.Comments), p.Since(r.Post.CreatedAt),
		})
	}
	return p.table([]string{"ID", "AUTHOR", "TITLE", "LIKES", "COMMENTS", "POSTED"}, out)
}

// Comments prints a post's comments.
func (p *Printer) Comments(cs []domain.Comment) error {
	if p.YAML() {
		return p.yaml(cs)
	}
	out := make([][]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, []string{c.ID, c.Author.FullName, truncate(c.Text, 60), p.Since(c.CreatedAt)})
	}
	return p.table([]string{"ID", "AUTHOR", "TEXT", "WHEN"}, out)
}

// Notifications prints the notification list.
func (p *Printer) Notifications(ns []domain.Notification) error {
	if p.YAML() {
		return p.yaml(ns)
	}
	out := make([][]string, 0, len(ns))
	for _, n := range ns {
		mark := ""
		if n.Unread() {
			mark = "new"
		}
		out = append(out, []string{
			mark,
			fmt.Sprintf("%s applied to %s", n.Applicant.FullName, n.CastingCall.ProjectTitle),
			p.Since(n.CreatedAt),
		})
	}
	return p.table([]string{"", "NOTIFICATION", "WHEN"}, out)
}

// Conversations prints the inbox from selfID's point of view.
func (p *Printer) Conversations(cs []domain.Conversation, selfID string) error {
	if p.YAML() {
		return p.yaml(cs)
	}
	out := make([][]string, 0, len(cs))
	for _, c := range cs {
		other, _ := c.Other(selfID)
		out = append(out, []string{c.ID, other.FullName, p.Since(c.UpdatedAt)})
	}
	return p.table([]string{"ID", "WITH", "UPDATED"}, out)
}

// Message prints one transcript line.
func (p *Printer) Message(m domain.Message) error {
	if p.YAML() {
		return p.yaml([]domain.Message{m})
	}
	who := m.Sender.FullName
	if who == "" {
		who = m.Sender.ID
	}
	_, err := fmt.Fprintf(p.w, "[%s] %s: %s\n", p.Since(m.CreatedAt), who, m.Text)
	return err
}

// Leaderboard prints the ranking.
func (p *Printer) Leaderboard(es []domain.LeaderboardEntry) error {
	if p.YAML() {
		return p.yaml(es)
	}
	out := make([][]string, 0, len(es))
	for i, e := range es {
		out = append(out, []string{
			humanize.Ordinal(i + 1), e.FullName, e.Role,
			humanize.Comma(int64(e.TotalLikes)), humanize.Comma(int64(e.TotalPosts)),
			humanize.FormatFloat("#,###.#", e.EngagementScore),
		})
	}
	return p.table([]string{"RANK", "NAME", "ROLE", "LIKES", "POSTS", "SCORE"}, out)
}

// Users prints search results.
func (p *Printer) Users(us []domain.User) error {
	if p.YAML() {
		return p.yaml(us)
	}
	out := make([][]string, 0, len(us))
	for _, u := range us {
		out = append(out, []string{u.ID, u.FullName, u.Role, u.Location, humanize.Comma(int64(len(u.Followers)))})
	}
	return p.table([]string{"ID", "NAME", "ROLE", "LOCATION", "FOLLOWERS"}, out)
}

// Groups prints the group directory.
func (p *Printer) Groups(gs []domain.Group) error {
	if p.YAML() {
		return p.yaml(gs)
	}
	out := make([][]string, 0, len(gs))
	for _, g := range gs {
		vis := "public"
		if g.IsPrivate {
			vis = "private"
		}
		out = append(out, []string{g.ID, g.Name, g.Admin.FullName, fmt.Sprint(len(g.Members)), vis})
	}
	return p.table([]string{"ID", "NAME", "ADMIN", "MEMBERS", "VISIBILITY"}, out)
}

// CastingRow is a casting call with the viewer's application state.
type CastingRow struct {
	Call    domain.CastingCall
	Applied bool
}

// CastingCalls prints the casting board.
func (p *Printer) CastingCalls(rows []CastingRow) error {
	if p.YAML() {
		calls := make([]domain.CastingCall, 0, len(rows))
		for _, r := range rows {
			calls = append(calls, r.Call)
		}
		return p.yaml(calls)
	}
	now := p.now()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := "open"
		switch {
		case r.Applied:
			status = "applied"
		case !r.Call.Open(now):
			status = "closed"
		}
		out = append(out, []string{
			r.Call.ID, truncate(r.Call.ProjectTitle, 40), r.Call.RoleType, r.Call.Location,
			p.Since(r.Call.ApplicationDeadline), status,
		})
	}
	return p.table([]string{"ID", "PROJECT", "ROLE", "LOCATION", "DEADLINE", "STATUS"}, out)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

package apiclient

import (
	"context"
	"net/url"

	"github.com/ashureev/castline/internal/domain"
)

// Leaderboard returns ranked members, optionally filtered by role.
// An empty role or domain.AllRoles means no filter.
func (c *Client) Leaderboard(ctx context.Context, role string) ([]domain.LeaderboardEntry, error) {
	var query url.Values
	if role != "" && role != domain.AllRoles {
		query = url.Values{"role": {role}}
	}
	var entries []domain.LeaderboardEntry
	if err := c.get(ctx, "/leaderboard", query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

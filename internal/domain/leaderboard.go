package domain

// LeaderboardEntry is one ranked member.
type LeaderboardEntry struct {
	UserID          string  `json:"userId" validate:"required"`
	FullName        string  `json:"fullName"`
	Role            string  `json:"role"`
	Avatar          string  `json:"avatar,omitempty"`
	TotalLikes      int     `json:"totalLikes"`
	TotalPosts      int     `json:"totalPosts"`
	EngagementScore float64 `json:"engagementScore"`
}

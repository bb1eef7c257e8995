package dto

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// UserReportSummary aggregates one user's attempts over the report window.
type UserReportSummary struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
	Points   int     `json:"points"`
	Mastered int     `json:"mastered"`
}

// WeeklyReportResponse compares two users over the trailing seven days.
type WeeklyReportResponse struct {
	Since           string            `json:"since"`
	User1           UserReportSummary `json:"user1"`
	User2           UserReportSummary `json:"user2"`
	OverlapSessions []SessionResponse `json:"overlap_sessions"`
}

package models

// LeaderboardEntry is one row of the global standings.
type LeaderboardEntry struct {
	Rank             int    `json:"rank" gorm:"-"`
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	TotalPoints      int64  `json:"total_points"`
	TotalPredictions int64  `json:"total_predictions"`
	ExactScores      int64  `json:"exact_scores"`
}

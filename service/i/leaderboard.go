package i

import "context"

// LeaderboardEntry is one ranked solve.
type LeaderboardEntry struct {
	Player string  `json:"player"`
	Score  float64 `json:"score"`
}

// Leaderboard keeps the best (lowest) score per player on named boards.
type Leaderboard interface {
	// Record stores score for player on board if it beats the player's
	// previous best. It reports whether the score was stored.
	Record(ctx context.Context, board, player string, score float64) (bool, error)

	// Top returns up to limit entries, best first.
	Top(ctx context.Context, board string, limit int64) ([]LeaderboardEntry, error)
}

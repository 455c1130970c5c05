package models

import "time"

// LeaderboardEntry is one ranked user on the karma leaderboard.
type LeaderboardEntry struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	Karma    int64  `json:"karma"`
}

// Leaderboard is the response of the rolling karma leaderboard.
type Leaderboard struct {
	Users       []LeaderboardEntry `json:"users"`
	WindowHours int                `json:"window_hours"`
	LastUpdated time.Time          `json:"last_updated"`
}

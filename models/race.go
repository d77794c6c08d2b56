package models

import "time"

// Race represents a scheduled race within a guild. WinnerRacerID and
// TotalPayout are written during settlement so history queries can report
// results after the race's bets have been removed.
type Race struct {
	ID            int64     `db:"id"`
	GuildID       int64     `db:"guild_id"`
	StartedAt     time.Time `db:"started_at"`
	Finished      bool      `db:"finished"`
	WinnerRacerID *int64    `db:"winner_racer_id"`
	TotalPayout   int64     `db:"total_payout"`
}

// RaceHistoryEntry is one row of the finished-race history for a guild
type RaceHistoryEntry struct {
	Race          Race
	WinnerRacerID *int64
	TotalPayout   int64
}

// RaceResult represents the outcome of a simulated race
type RaceResult struct {
	RaceID     int64
	Placements []int64
	EventLog   []string
}

// CourseSegment is one ordered leg of a race's course. The number of
// segments drives how many commentary events the simulation produces.
type CourseSegment struct {
	ID          int64  `db:"id"`
	RaceID      int64  `db:"race_id"`
	Position    int    `db:"position"`
	Description string `db:"description"`
}

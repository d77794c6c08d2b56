package models

import "time"

// Racer represents a persistent contestant owned by a Discord user
type Racer struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	OwnerID     int64     `db:"owner_id"`
	Retired     bool      `db:"retired"`
	Speed       int       `db:"speed"`
	Cornering   int       `db:"cornering"`
	Stamina     int       `db:"stamina"`
	Temperament string    `db:"temperament"`
	Mood        int       `db:"mood"`
	Injuries    string    `db:"injuries"`
	CreatedAt   time.Time `db:"created_at"`
}

// RacerUpdate describes a partial update to a racer. Nil fields are left
// untouched, so admin edits and retirement can change single columns without
// clobbering the rest of the row.
type RacerUpdate struct {
	Name        *string
	Retired     *bool
	Speed       *int
	Cornering   *int
	Stamina     *int
	Temperament *string
	Mood        *int
	Injuries    *string
}

// Empty reports whether the update would change nothing
func (u *RacerUpdate) Empty() bool {
	return u.Name == nil && u.Retired == nil && u.Speed == nil &&
		u.Cornering == nil && u.Stamina == nil && u.Temperament == nil &&
		u.Mood == nil && u.Injuries == nil
}

// Default stats for newly created racers and retirement successors
const (
	DefaultTemperament = "Quirky"
	DefaultMood        = 3
)

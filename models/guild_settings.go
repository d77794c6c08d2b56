package models

// GuildSettings holds per-guild overrides of the derby configuration
type GuildSettings struct {
	GuildID             int64 `db:"guild_id"`
	RaceFrequency       int   `db:"race_frequency"`
	DefaultWallet       int64 `db:"default_wallet"`
	RetirementThreshold int   `db:"retirement_threshold"`
}

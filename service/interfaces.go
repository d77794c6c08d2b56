package service

import (
	"context"
	"time"

	"derby/events"
	"derby/models"
)

// RacerRepository defines the interface for racer data access
type RacerRepository interface {
	// Create creates a new racer row and returns it with its assigned ID
	Create(ctx context.Context, racer *models.Racer) error

	// GetByID retrieves a racer by its ID
	GetByID(ctx context.Context, id int64) (*models.Racer, error)

	// Update applies a partial update; nil fields are left untouched
	Update(ctx context.Context, id int64, update *models.RacerUpdate) (*models.Racer, error)

	// Delete removes a racer row
	Delete(ctx context.Context, id int64) error

	// GetActive returns all non-retired racers ordered by ID
	GetActive(ctx context.Context) ([]*models.Racer, error)
}

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	// Create creates a new open race for a guild
	Create(ctx context.Context, guildID int64) (*models.Race, error)

	// GetByID retrieves a race by its ID
	GetByID(ctx context.Context, id int64) (*models.Race, error)

	// Delete removes a race row; deletion while the race is open is the
	// cancellation signal observed by the commentary streamer
	Delete(ctx context.Context, id int64) error

	// GetUnfinished returns all races with finished=false ordered by ID
	GetUnfinished(ctx context.Context) ([]*models.Race, error)

	// CountSince returns the number of races created for a guild at or
	// after the given time
	CountSince(ctx context.Context, guildID int64, since time.Time) (int, error)

	// MarkFinished sets finished=true and records the settlement outcome
	MarkFinished(ctx context.Context, id int64, winnerRacerID *int64, totalPayout int64) error

	// GetHistory returns the most recently finished races for a guild with
	// their resolved winner and total payout, newest first
	GetHistory(ctx context.Context, guildID int64, limit int) ([]*models.RaceHistoryEntry, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create creates a new bet record
	Create(ctx context.Context, bet *models.Bet) error

	// GetByRace returns all bets on a race ordered by ID
	GetByRace(ctx context.Context, raceID int64) ([]*models.Bet, error)

	// GetByRaceAndUser returns a user's active bet on a race, or nil
	GetByRaceAndUser(ctx context.Context, raceID, userID int64) (*models.Bet, error)

	// Delete removes a bet row
	Delete(ctx context.Context, id int64) error

	// DeleteByRace removes all bets for a race
	DeleteByRace(ctx context.Context, raceID int64) error
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// Get retrieves a wallet, or nil if the user has none yet
	Get(ctx context.Context, userID int64) (*models.Wallet, error)

	// GetForUpdate retrieves a wallet holding a row lock for the duration
	// of the enclosing transaction, serializing concurrent financial
	// operations on the same wallet
	GetForUpdate(ctx context.Context, userID int64) (*models.Wallet, error)

	// Create creates a wallet with the given starting balance
	Create(ctx context.Context, userID int64, balance int64) (*models.Wallet, error)

	// Credit adds to a wallet balance atomically
	Credit(ctx context.Context, userID int64, amount int64) error

	// Debit deducts from a wallet balance atomically, failing if the
	// balance would go negative
	Debit(ctx context.Context, userID int64, amount int64) error
}

// CourseSegmentRepository defines the interface for course segment data access
type CourseSegmentRepository interface {
	// Create creates a new course segment
	Create(ctx context.Context, segment *models.CourseSegment) error

	// GetByRace returns a race's segments ordered by position
	GetByRace(ctx context.Context, raceID int64) ([]*models.CourseSegment, error)

	// DeleteByRace removes all segments for a race
	DeleteByRace(ctx context.Context, raceID int64) error
}

// GuildSettingsRepository defines the interface for guild settings data access
type GuildSettingsRepository interface {
	// GetOrCreate retrieves guild settings, creating them with the given
	// defaults if absent
	GetOrCreate(ctx context.Context, guildID int64, defaults *models.GuildSettings) (*models.GuildSettings, error)

	// Update saves modified guild settings
	Update(ctx context.Context, settings *models.GuildSettings) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories. Events
// published through its bus are buffered until Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RacerRepository() RacerRepository
	RaceRepository() RaceRepository
	BetRepository() BetRepository
	WalletRepository() WalletRepository
	CourseSegmentRepository() CourseSegmentRepository
	GuildSettingsRepository() GuildSettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// LedgerService defines the interface for wallet and betting operations
type LedgerService interface {
	// GetOrCreateWallet retrieves a user's wallet, creating it with the
	// guild's default balance on first interaction
	GetOrCreateWallet(ctx context.Context, guildID, userID int64) (*models.Wallet, error)

	// PlaceBet places a bet on a racer in a race. Any prior bet by the
	// same user on the same race is refunded and replaced atomically.
	PlaceBet(ctx context.Context, guildID, userID, raceID, racerID int64, amount int64) (*models.BetReceipt, error)
}

// PayoutResolver settles all bets of a finished race
type PayoutResolver interface {
	// Settle resolves every bet on the race against the winner (the
	// minimum racer ID among the race's bets), credits winning wallets
	// with double their stake, and deletes all processed bets in one
	// transaction. Settling a race with no bets is a no-op.
	Settle(ctx context.Context, raceID int64) (*models.SettlementResult, error)
}

// RetirementEngine applies post-race stochastic retirement
type RetirementEngine interface {
	// Process rolls retirement for each participant; retired racers get
	// exactly one successor with fresh default stats
	Process(ctx context.Context, guildID int64, participants []*models.Racer) error
}

// RacerService defines admin operations on racers
type RacerService interface {
	AddRacer(ctx context.Context, name string, ownerID int64) (*models.Racer, error)
	EditRacer(ctx context.Context, racerID int64, update *models.RacerUpdate) (*models.Racer, error)
	RemoveRacer(ctx context.Context, racerID int64) error
	GetRacer(ctx context.Context, racerID int64) (*models.Racer, error)
	ListActiveRacers(ctx context.Context) ([]*models.Racer, error)
}

// RaceService defines race lookup and admin operations
type RaceService interface {
	// NextRace returns the oldest unfinished race for a guild, or nil
	NextRace(ctx context.Context, guildID int64) (*models.Race, error)

	// ForceStartRace creates an open race immediately
	ForceStartRace(ctx context.Context, guildID int64) (*models.Race, error)

	// CancelRace deletes an unfinished race; this is the cancellation
	// signal consumed by any in-flight commentary stream
	CancelRace(ctx context.Context, raceID int64) error

	// History returns the most recent finished races with results
	History(ctx context.Context, guildID int64, limit int) ([]*models.RaceHistoryEntry, error)
}

// GuildSettingsService defines per-guild configuration operations
type GuildSettingsService interface {
	GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	UpdateSettings(ctx context.Context, settings *models.GuildSettings) error
}

package repository

import (
	"context"
	"fmt"
	"time"

	"derby/database"
	"derby/models"
	"github.com/jackc/pgx/v5"
)

// RaceRepository implements the RaceRepository interface
type RaceRepository struct {
	q Queryable
}

// NewRaceRepository creates a new race repository
func NewRaceRepository(db *database.DB) *RaceRepository {
	return &RaceRepository{q: db.Pool}
}

// newRaceRepositoryWithTx creates a new race repository with a transaction
func newRaceRepositoryWithTx(tx Queryable) *RaceRepository {
	return &RaceRepository{q: tx}
}

// Create creates a new open race for a guild
func (r *RaceRepository) Create(ctx context.Context, guildID int64) (*models.Race, error) {
	query := `
		INSERT INTO races (guild_id)
		VALUES ($1)
		RETURNING id, guild_id, started_at, finished, winner_racer_id, total_payout
	`

	var race models.Race
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&race.ID,
		&race.GuildID,
		&race.StartedAt,
		&race.Finished,
		&race.WinnerRacerID,
		&race.TotalPayout,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create race for guild %d: %w", guildID, err)
	}

	return &race, nil
}

// GetByID retrieves a race by its ID, or nil when absent
func (r *RaceRepository) GetByID(ctx context.Context, id int64) (*models.Race, error) {
	query := `
		SELECT id, guild_id, started_at, finished, winner_racer_id, total_payout
		FROM races
		WHERE id = $1
	`

	var race models.Race
	err := r.q.QueryRow(ctx, query, id).Scan(
		&race.ID,
		&race.GuildID,
		&race.StartedAt,
		&race.Finished,
		&race.WinnerRacerID,
		&race.TotalPayout,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race %d: %w", id, err)
	}

	return &race, nil
}

// Delete removes a race row
func (r *RaceRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM races WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete race %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("race %d not found", id)
	}

	return nil
}

// GetUnfinished returns all races with finished=false ordered by ID
func (r *RaceRepository) GetUnfinished(ctx context.Context) ([]*models.Race, error) {
	query := `
		SELECT id, guild_id, started_at, finished, winner_racer_id, total_payout
		FROM races
		WHERE finished = FALSE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get unfinished races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		var race models.Race
		err := rows.Scan(
			&race.ID,
			&race.GuildID,
			&race.StartedAt,
			&race.Finished,
			&race.WinnerRacerID,
			&race.TotalPayout,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race: %w", err)
		}
		races = append(races, &race)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate races: %w", err)
	}

	return races, nil
}

// CountSince returns the number of races created for a guild at or after
// the given time
func (r *RaceRepository) CountSince(ctx context.Context, guildID int64, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM races
		WHERE guild_id = $1 AND started_at >= $2
	`

	var count int
	if err := r.q.QueryRow(ctx, query, guildID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count races for guild %d: %w", guildID, err)
	}

	return count, nil
}

// MarkFinished sets finished=true and records the settlement outcome
func (r *RaceRepository) MarkFinished(ctx context.Context, id int64, winnerRacerID *int64, totalPayout int64) error {
	query := `
		UPDATE races
		SET finished = TRUE, winner_racer_id = $2, total_payout = $3
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query, id, winnerRacerID, totalPayout)
	if err != nil {
		return fmt.Errorf("failed to mark race %d finished: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("race %d not found", id)
	}

	return nil
}

// GetHistory returns the most recently finished races for a guild together
// with their resolved winner and total payout, newest first
func (r *RaceRepository) GetHistory(ctx context.Context, guildID int64, limit int) ([]*models.RaceHistoryEntry, error) {
	query := `
		SELECT id, guild_id, started_at, finished, winner_racer_id, total_payout
		FROM races
		WHERE guild_id = $1 AND finished = TRUE
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get race history for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var history []*models.RaceHistoryEntry
	for rows.Next() {
		var entry models.RaceHistoryEntry
		err := rows.Scan(
			&entry.Race.ID,
			&entry.Race.GuildID,
			&entry.Race.StartedAt,
			&entry.Race.Finished,
			&entry.Race.WinnerRacerID,
			&entry.Race.TotalPayout,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan race history entry: %w", err)
		}
		entry.WinnerRacerID = entry.Race.WinnerRacerID
		entry.TotalPayout = entry.Race.TotalPayout
		history = append(history, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate race history: %w", err)
	}

	return history, nil
}

package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/models"
	"github.com/jackc/pgx/v5"
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// Create creates a new bet record and fills in its assigned ID
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (race_id, user_id, racer_id, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.RaceID,
		bet.UserID,
		bet.RacerID,
		bet.Amount,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet on race %d for user %d: %w", bet.RaceID, bet.UserID, err)
	}

	return nil
}

// GetByRace returns all bets on a race ordered by ID
func (r *BetRepository) GetByRace(ctx context.Context, raceID int64) ([]*models.Bet, error) {
	query := `
		SELECT id, race_id, user_id, racer_id, amount, created_at
		FROM bets
		WHERE race_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for race %d: %w", raceID, err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.RaceID,
			&bet.UserID,
			&bet.RacerID,
			&bet.Amount,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// GetByRaceAndUser returns a user's active bet on a race, or nil
func (r *BetRepository) GetByRaceAndUser(ctx context.Context, raceID, userID int64) (*models.Bet, error) {
	query := `
		SELECT id, race_id, user_id, racer_id, amount, created_at
		FROM bets
		WHERE race_id = $1 AND user_id = $2
	`

	var bet models.Bet
	err := r.q.QueryRow(ctx, query, raceID, userID).Scan(
		&bet.ID,
		&bet.RaceID,
		&bet.UserID,
		&bet.RacerID,
		&bet.Amount,
		&bet.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet on race %d for user %d: %w", raceID, userID, err)
	}

	return &bet, nil
}

// Delete removes a bet row
func (r *BetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bet %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", id)
	}

	return nil
}

// DeleteByRace removes all bets for a race
func (r *BetRepository) DeleteByRace(ctx context.Context, raceID int64) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bets WHERE race_id = $1`, raceID); err != nil {
		return fmt.Errorf("failed to delete bets for race %d: %w", raceID, err)
	}

	return nil
}

package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/models"
	"github.com/jackc/pgx/v5"
)

// RacerRepository implements the RacerRepository interface
type RacerRepository struct {
	q Queryable
}

// NewRacerRepository creates a new racer repository
func NewRacerRepository(db *database.DB) *RacerRepository {
	return &RacerRepository{q: db.Pool}
}

// newRacerRepositoryWithTx creates a new racer repository with a transaction
func newRacerRepositoryWithTx(tx Queryable) *RacerRepository {
	return &RacerRepository{q: tx}
}

// Create creates a new racer row and fills in its assigned ID
func (r *RacerRepository) Create(ctx context.Context, racer *models.Racer) error {
	query := `
		INSERT INTO racers (name, owner_id, retired, speed, cornering, stamina, temperament, mood, injuries)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		racer.Name,
		racer.OwnerID,
		racer.Retired,
		racer.Speed,
		racer.Cornering,
		racer.Stamina,
		racer.Temperament,
		racer.Mood,
		racer.Injuries,
	).Scan(&racer.ID, &racer.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create racer %q: %w", racer.Name, err)
	}

	return nil
}

// GetByID retrieves a racer by its ID, or nil when absent
func (r *RacerRepository) GetByID(ctx context.Context, id int64) (*models.Racer, error) {
	query := `
		SELECT id, name, owner_id, retired, speed, cornering, stamina, temperament, mood, injuries, created_at
		FROM racers
		WHERE id = $1
	`

	var racer models.Racer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&racer.ID,
		&racer.Name,
		&racer.OwnerID,
		&racer.Retired,
		&racer.Speed,
		&racer.Cornering,
		&racer.Stamina,
		&racer.Temperament,
		&racer.Mood,
		&racer.Injuries,
		&racer.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get racer %d: %w", id, err)
	}

	return &racer, nil
}

// Update applies a partial update and returns the updated row, or nil when
// the racer does not exist. COALESCE keeps columns whose update field is nil.
func (r *RacerRepository) Update(ctx context.Context, id int64, update *models.RacerUpdate) (*models.Racer, error) {
	query := `
		UPDATE racers
		SET name = COALESCE($2, name),
		    retired = COALESCE($3, retired),
		    speed = COALESCE($4, speed),
		    cornering = COALESCE($5, cornering),
		    stamina = COALESCE($6, stamina),
		    temperament = COALESCE($7, temperament),
		    mood = COALESCE($8, mood),
		    injuries = COALESCE($9, injuries)
		WHERE id = $1
		RETURNING id, name, owner_id, retired, speed, cornering, stamina, temperament, mood, injuries, created_at
	`

	var racer models.Racer
	err := r.q.QueryRow(ctx, query, id,
		update.Name,
		update.Retired,
		update.Speed,
		update.Cornering,
		update.Stamina,
		update.Temperament,
		update.Mood,
		update.Injuries,
	).Scan(
		&racer.ID,
		&racer.Name,
		&racer.OwnerID,
		&racer.Retired,
		&racer.Speed,
		&racer.Cornering,
		&racer.Stamina,
		&racer.Temperament,
		&racer.Mood,
		&racer.Injuries,
		&racer.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update racer %d: %w", id, err)
	}

	return &racer, nil
}

// Delete removes a racer row
func (r *RacerRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM racers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete racer %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("racer %d not found", id)
	}

	return nil
}

// GetActive returns all non-retired racers ordered by ID
func (r *RacerRepository) GetActive(ctx context.Context) ([]*models.Racer, error) {
	query := `
		SELECT id, name, owner_id, retired, speed, cornering, stamina, temperament, mood, injuries, created_at
		FROM racers
		WHERE retired = FALSE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active racers: %w", err)
	}
	defer rows.Close()

	var racers []*models.Racer
	for rows.Next() {
		var racer models.Racer
		err := rows.Scan(
			&racer.ID,
			&racer.Name,
			&racer.OwnerID,
			&racer.Retired,
			&racer.Speed,
			&racer.Cornering,
			&racer.Stamina,
			&racer.Temperament,
			&racer.Mood,
			&racer.Injuries,
			&racer.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan racer: %w", err)
		}
		racers = append(racers, &racer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate racers: %w", err)
	}

	return racers, nil
}

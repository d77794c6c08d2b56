package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/models"
	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements the GuildSettingsRepository interface
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(db *database.DB) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: db.Pool}
}

// newGuildSettingsRepositoryWithTx creates a new guild settings repository with a transaction
func newGuildSettingsRepositoryWithTx(tx Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreate retrieves guild settings or creates them with the given
// defaults if not found
func (r *GuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64, defaults *models.GuildSettings) (*models.GuildSettings, error) {
	// First try to get existing settings
	query := `
		SELECT guild_id, race_frequency, default_wallet, retirement_threshold
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings models.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.RaceFrequency,
		&settings.DefaultWallet,
		&settings.RetirementThreshold,
	)

	if err == nil {
		return &settings, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	// If not found, create default settings
	insertQuery := `
		INSERT INTO guild_settings (guild_id, race_frequency, default_wallet, retirement_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING guild_id, race_frequency, default_wallet, retirement_threshold
	`

	err = r.q.QueryRow(ctx, insertQuery,
		guildID,
		defaults.RaceFrequency,
		defaults.DefaultWallet,
		defaults.RetirementThreshold,
	).Scan(
		&settings.GuildID,
		&settings.RaceFrequency,
		&settings.DefaultWallet,
		&settings.RetirementThreshold,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// Update saves modified guild settings
func (r *GuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET race_frequency = $2,
		    default_wallet = $3,
		    retirement_threshold = $4
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.RaceFrequency,
		settings.DefaultWallet,
		settings.RetirementThreshold,
	)

	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}

	return nil
}

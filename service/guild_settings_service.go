package service

import (
	"context"
	"fmt"

	"derby/config"
	"derby/models"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory, cfg *config.Config) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID, s.cfg.DefaultGuildSettings(guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}

	// Commit the transaction (in case new settings were created)
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// UpdateSettings saves modified guild settings
func (s *guildSettingsService) UpdateSettings(ctx context.Context, settings *models.GuildSettings) error {
	if settings.RaceFrequency < 0 {
		return fmt.Errorf("race frequency must not be negative: %w", ErrInvalidSettings)
	}
	if settings.DefaultWallet < 0 {
		return fmt.Errorf("default wallet must not be negative: %w", ErrInvalidSettings)
	}
	if settings.RetirementThreshold < 1 || settings.RetirementThreshold > 100 {
		return fmt.Errorf("retirement threshold must be within 1-100: %w", ErrInvalidSettings)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.GuildSettingsRepository().Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

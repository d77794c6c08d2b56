package service

import (
	"context"
	"fmt"

	"derby/models"
)

type racerService struct {
	uowFactory UnitOfWorkFactory
}

// NewRacerService creates a new racer service
func NewRacerService(uowFactory UnitOfWorkFactory) RacerService {
	return &racerService{
		uowFactory: uowFactory,
	}
}

func (s *racerService) AddRacer(ctx context.Context, name string, ownerID int64) (*models.Racer, error) {
	if name == "" {
		return nil, fmt.Errorf("racer name must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	racer := &models.Racer{
		Name:        name,
		OwnerID:     ownerID,
		Temperament: models.DefaultTemperament,
		Mood:        models.DefaultMood,
	}
	if err := uow.RacerRepository().Create(ctx, racer); err != nil {
		return nil, fmt.Errorf("failed to create racer: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return racer, nil
}

func (s *racerService) EditRacer(ctx context.Context, racerID int64, update *models.RacerUpdate) (*models.Racer, error) {
	if update == nil || update.Empty() {
		return nil, fmt.Errorf("nothing to update")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	racer, err := uow.RacerRepository().Update(ctx, racerID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update racer %d: %w", racerID, err)
	}
	if racer == nil {
		return nil, fmt.Errorf("racer %d: %w", racerID, ErrNotFound)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return racer, nil
}

func (s *racerService) RemoveRacer(ctx context.Context, racerID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	racer, err := uow.RacerRepository().GetByID(ctx, racerID)
	if err != nil {
		return fmt.Errorf("failed to get racer %d: %w", racerID, err)
	}
	if racer == nil {
		return fmt.Errorf("racer %d: %w", racerID, ErrNotFound)
	}

	if err := uow.RacerRepository().Delete(ctx, racerID); err != nil {
		return fmt.Errorf("failed to delete racer %d: %w", racerID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *racerService) GetRacer(ctx context.Context, racerID int64) (*models.Racer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	racer, err := uow.RacerRepository().GetByID(ctx, racerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get racer %d: %w", racerID, err)
	}
	if racer == nil {
		return nil, fmt.Errorf("racer %d: %w", racerID, ErrNotFound)
	}

	return racer, nil
}

func (s *racerService) ListActiveRacers(ctx context.Context) ([]*models.Racer, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	racers, err := uow.RacerRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active racers: %w", err)
	}

	return racers, nil
}

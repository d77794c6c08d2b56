package service

import (
	"context"
	"fmt"

	"derby/events"
	"derby/models"
)

type raceService struct {
	uowFactory UnitOfWorkFactory
}

// NewRaceService creates a new race service
func NewRaceService(uowFactory UnitOfWorkFactory) RaceService {
	return &raceService{
		uowFactory: uowFactory,
	}
}

// NextRace returns the oldest unfinished race for a guild, or nil when no
// race is scheduled
func (s *raceService) NextRace(ctx context.Context, guildID int64) (*models.Race, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	races, err := uow.RaceRepository().GetUnfinished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get unfinished races: %w", err)
	}

	for _, race := range races {
		if race.GuildID == guildID {
			return race, nil
		}
	}
	return nil, nil
}

func (s *raceService) ForceStartRace(ctx context.Context, guildID int64) (*models.Race, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	race, err := uow.RaceRepository().Create(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}

	uow.EventBus().Publish(events.RaceScheduledEvent{
		RaceID:  race.ID,
		GuildID: guildID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return race, nil
}

// CancelRace deletes an unfinished race together with its bets and course
// segments. Bets are refunded in full. The deleted race row is what an
// in-flight commentary stream polls for, so deletion also stops streaming.
func (s *raceService) CancelRace(ctx context.Context, raceID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	race, err := uow.RaceRepository().GetByID(ctx, raceID)
	if err != nil {
		return fmt.Errorf("failed to get race %d: %w", raceID, err)
	}
	if race == nil {
		return fmt.Errorf("race %d: %w", raceID, ErrNotFound)
	}
	if race.Finished {
		return fmt.Errorf("race %d already finished: %w", raceID, ErrNotFound)
	}

	bets, err := uow.BetRepository().GetByRace(ctx, raceID)
	if err != nil {
		return fmt.Errorf("failed to get bets for race %d: %w", raceID, err)
	}

	for _, bet := range bets {
		if err := uow.WalletRepository().Credit(ctx, bet.UserID, bet.Amount); err != nil {
			return fmt.Errorf("failed to refund bet %d: %w", bet.ID, err)
		}
	}

	if err := uow.BetRepository().DeleteByRace(ctx, raceID); err != nil {
		return fmt.Errorf("failed to delete bets for race %d: %w", raceID, err)
	}
	if err := uow.CourseSegmentRepository().DeleteByRace(ctx, raceID); err != nil {
		return fmt.Errorf("failed to delete segments for race %d: %w", raceID, err)
	}
	if err := uow.RaceRepository().Delete(ctx, raceID); err != nil {
		return fmt.Errorf("failed to delete race %d: %w", raceID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *raceService) History(ctx context.Context, guildID int64, limit int) ([]*models.RaceHistoryEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.RaceRepository().GetHistory(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get race history: %w", err)
	}

	return history, nil
}

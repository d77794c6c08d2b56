package service

import (
	"context"
	"fmt"
	"math/rand"

	log "github.com/sirupsen/logrus"

	"derby/config"
	"derby/events"
	"derby/models"
)

type retirementEngine struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
	rng        *rand.Rand
}

// NewRetirementEngine creates a new retirement engine. The generator is
// injected so tests can fix the draws.
func NewRetirementEngine(uowFactory UnitOfWorkFactory, cfg *config.Config, rng *rand.Rand) RetirementEngine {
	return &retirementEngine{
		uowFactory: uowFactory,
		cfg:        cfg,
		rng:        rng,
	}
}

// Process rolls a uniform draw in [1,100] for each participant. A draw at or
// above the guild's retirement threshold retires the racer and creates
// exactly one successor for the same owner with fresh default stats, so the
// racer population never shrinks.
func (e *retirementEngine) Process(ctx context.Context, guildID int64, participants []*models.Racer) error {
	if len(participants) == 0 {
		return nil
	}

	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID, e.cfg.DefaultGuildSettings(guildID))
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	for _, racer := range participants {
		draw := e.rng.Intn(100) + 1
		if draw < settings.RetirementThreshold {
			continue
		}

		retired := true
		if _, err := uow.RacerRepository().Update(ctx, racer.ID, &models.RacerUpdate{Retired: &retired}); err != nil {
			return fmt.Errorf("failed to retire racer %d: %w", racer.ID, err)
		}

		successor := &models.Racer{
			Name:        racer.Name + " II",
			OwnerID:     racer.OwnerID,
			Temperament: models.DefaultTemperament,
			Mood:        models.DefaultMood,
		}
		if err := uow.RacerRepository().Create(ctx, successor); err != nil {
			return fmt.Errorf("failed to create successor for racer %d: %w", racer.ID, err)
		}

		log.WithFields(log.Fields{
			"racer_id":     racer.ID,
			"successor_id": successor.ID,
			"owner_id":     racer.OwnerID,
			"draw":         draw,
			"threshold":    settings.RetirementThreshold,
		}).Info("Racer retired")

		uow.EventBus().Publish(events.RacerRetiredEvent{
			GuildID:       guildID,
			RacerID:       racer.ID,
			RacerName:     racer.Name,
			OwnerID:       racer.OwnerID,
			SuccessorID:   successor.ID,
			SuccessorName: successor.Name,
		})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

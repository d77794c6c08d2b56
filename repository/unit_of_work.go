package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/events"
	"derby/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	racerRepo        service.RacerRepository
	raceRepo         service.RaceRepository
	betRepo          service.BetRepository
	walletRepo       service.WalletRepository
	segmentRepo      service.CourseSegmentRepository
	settingsRepo     service.GuildSettingsRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.racerRepo = newRacerRepositoryWithTx(tx)
	u.raceRepo = newRaceRepositoryWithTx(tx)
	u.betRepo = newBetRepositoryWithTx(tx)
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.segmentRepo = newCourseSegmentRepositoryWithTx(tx)
	u.settingsRepo = newGuildSettingsRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes buffered events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards buffered events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// RacerRepository returns the racer repository for this unit of work
func (u *unitOfWork) RacerRepository() service.RacerRepository {
	if u.racerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.racerRepo
}

// RaceRepository returns the race repository for this unit of work
func (u *unitOfWork) RaceRepository() service.RaceRepository {
	if u.raceRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.raceRepo
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() service.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() service.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

// CourseSegmentRepository returns the course segment repository for this unit of work
func (u *unitOfWork) CourseSegmentRepository() service.CourseSegmentRepository {
	if u.segmentRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.segmentRepo
}

// GuildSettingsRepository returns the guild settings repository for this unit of work
func (u *unitOfWork) GuildSettingsRepository() service.GuildSettingsRepository {
	if u.settingsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settingsRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}

package service

import (
	"context"
	"fmt"

	"derby/config"
	"derby/events"
	"derby/models"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	cfg        *config.Config
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, cfg *config.Config) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// GetOrCreateWallet retrieves a user's wallet, creating it with the guild's
// default balance on first financial interaction
func (s *ledgerService) GetOrCreateWallet(ctx context.Context, guildID, userID int64) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	wallet, err := s.getOrCreateWallet(ctx, uow, guildID, userID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// getOrCreateWallet is the shared lookup used inside a caller's transaction
func (s *ledgerService) getOrCreateWallet(ctx context.Context, uow UnitOfWork, guildID, userID int64) (*models.Wallet, error) {
	wallet, err := uow.WalletRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet != nil {
		return wallet, nil
	}

	settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID, s.cfg.DefaultGuildSettings(guildID))
	if err != nil {
		return nil, fmt.Errorf("failed to get guild settings: %w", err)
	}

	wallet, err = uow.WalletRepository().Create(ctx, userID, settings.DefaultWallet)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return wallet, nil
}

// PlaceBet places a bet on a racer in a race. A prior bet by the same user
// on the same race is fully refunded before the new amount is checked and
// debited; the refund, the balance check and the debit happen in a single
// transaction under a wallet row lock, so a concurrent bet cannot observe
// the refunded amount twice.
func (s *ledgerService) PlaceBet(ctx context.Context, guildID, userID, raceID, racerID int64, amount int64) (*models.BetReceipt, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	race, err := uow.RaceRepository().GetByID(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}
	if race == nil || race.Finished {
		return nil, fmt.Errorf("race %d: %w", raceID, ErrNotFound)
	}

	racer, err := uow.RacerRepository().GetByID(ctx, racerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get racer: %w", err)
	}
	if racer == nil || racer.Retired {
		return nil, fmt.Errorf("racer %d: %w", racerID, ErrNotFound)
	}

	wallet, err := s.getOrCreateWallet(ctx, uow, guildID, userID)
	if err != nil {
		return nil, err
	}

	existing, err := uow.BetRepository().GetByRaceAndUser(ctx, raceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing bet: %w", err)
	}

	var refunded int64
	if existing != nil {
		refunded = existing.Amount
	}

	// The balance check applies after the hypothetical refund; nothing has
	// been written yet, so a rejection here leaves the prior bet intact.
	available := wallet.Balance + refunded
	if amount > available {
		return nil, &InsufficientFundsError{Have: available, Need: amount}
	}

	if existing != nil {
		if err := uow.WalletRepository().Credit(ctx, userID, refunded); err != nil {
			return nil, fmt.Errorf("failed to refund prior bet: %w", err)
		}
		if err := uow.BetRepository().Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to remove prior bet: %w", err)
		}
	}

	if err := uow.WalletRepository().Debit(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to debit bet amount: %w", err)
	}

	bet := &models.Bet{
		RaceID:  raceID,
		UserID:  userID,
		RacerID: racerID,
		Amount:  amount,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	newBalance := wallet.Balance + refunded - amount

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:    bet.ID,
		RaceID:   raceID,
		UserID:   userID,
		RacerID:  racerID,
		Amount:   amount,
		Refunded: refunded,
	})
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: wallet.Balance,
		NewBalance: newBalance,
		Reason:     "bet_placed",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.BetReceipt{
		Bet:        bet,
		Refunded:   refunded,
		NewBalance: newBalance,
	}, nil
}

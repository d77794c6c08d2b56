package service

import (
	"context"
	"fmt"

	"derby/events"
	"derby/models"
)

type payoutResolver struct {
	uowFactory UnitOfWorkFactory
}

// NewPayoutResolver creates a new payout resolver
func NewPayoutResolver(uowFactory UnitOfWorkFactory) PayoutResolver {
	return &payoutResolver{
		uowFactory: uowFactory,
	}
}

// Settle resolves all bets for a race in a single transaction.
//
// The winner is the minimum racer ID among the race's bets, not the simulated
// placement order. That mirrors the shipped behavior and is covered by tests;
// changing it to use placements must be a deliberate product decision.
// Winning bets are credited double their stake, every processed bet is
// deleted, and the outcome is recorded on the race row so history queries
// survive the bet deletion. Settling a race with no remaining bets is a
// no-op, which makes re-invocation after a partial tick safe.
func (s *payoutResolver) Settle(ctx context.Context, raceID int64) (*models.SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	race, err := uow.RaceRepository().GetByID(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}
	if race == nil {
		return nil, fmt.Errorf("race %d: %w", raceID, ErrNotFound)
	}

	bets, err := uow.BetRepository().GetByRace(ctx, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for race %d: %w", raceID, err)
	}

	if len(bets) == 0 {
		return &models.SettlementResult{
			RaceID:        raceID,
			WinnerRacerID: race.WinnerRacerID,
			TotalPayout:   race.TotalPayout,
		}, nil
	}

	winner := bets[0].RacerID
	for _, bet := range bets {
		if bet.RacerID < winner {
			winner = bet.RacerID
		}
	}

	result := &models.SettlementResult{
		RaceID:        raceID,
		WinnerRacerID: &winner,
	}

	for _, bet := range bets {
		outcome := models.BetOutcome{
			UserID:  bet.UserID,
			RacerID: bet.RacerID,
			Amount:  bet.Amount,
			Won:     bet.RacerID == winner,
		}

		if outcome.Won {
			outcome.Payout = bet.Amount * 2

			wallet, err := uow.WalletRepository().GetForUpdate(ctx, bet.UserID)
			if err != nil {
				return nil, fmt.Errorf("failed to get wallet for user %d: %w", bet.UserID, err)
			}
			if wallet == nil {
				// A bettor always has a wallet, but losing the row must
				// not lose their winnings.
				if wallet, err = uow.WalletRepository().Create(ctx, bet.UserID, 0); err != nil {
					return nil, fmt.Errorf("failed to create wallet for user %d: %w", bet.UserID, err)
				}
			}

			if err := uow.WalletRepository().Credit(ctx, bet.UserID, outcome.Payout); err != nil {
				return nil, fmt.Errorf("failed to credit winnings for user %d: %w", bet.UserID, err)
			}

			uow.EventBus().Publish(events.BalanceChangeEvent{
				UserID:     bet.UserID,
				OldBalance: wallet.Balance,
				NewBalance: wallet.Balance + outcome.Payout,
				Reason:     "race_payout",
			})

			result.TotalPayout += outcome.Payout
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	if err := uow.BetRepository().DeleteByRace(ctx, raceID); err != nil {
		return nil, fmt.Errorf("failed to clear bets for race %d: %w", raceID, err)
	}

	if err := uow.RaceRepository().MarkFinished(ctx, raceID, &winner, result.TotalPayout); err != nil {
		return nil, fmt.Errorf("failed to record settlement on race %d: %w", raceID, err)
	}

	uow.EventBus().Publish(events.RaceSettledEvent{
		RaceID:        raceID,
		GuildID:       race.GuildID,
		WinnerRacerID: &winner,
		TotalPayout:   result.TotalPayout,
		BetCount:      len(bets),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

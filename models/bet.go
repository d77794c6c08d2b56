package models

import "time"

// Bet represents a wager on a racer within one race. A user holds at most
// one active bet per race; placing a second one refunds and replaces the
// first. Bets are deleted when their race settles.
type Bet struct {
	ID        int64     `db:"id"`
	RaceID    int64     `db:"race_id"`
	UserID    int64     `db:"user_id"`
	RacerID   int64     `db:"racer_id"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// BetReceipt is returned to the command layer after a bet is placed
type BetReceipt struct {
	Bet        *Bet
	Refunded   int64
	NewBalance int64
}

// BetOutcome describes one settled bet for bettor notification
type BetOutcome struct {
	UserID  int64
	RacerID int64
	Amount  int64
	Won     bool
	Payout  int64
}

// SettlementResult summarizes a race settlement
type SettlementResult struct {
	RaceID        int64
	WinnerRacerID *int64
	TotalPayout   int64
	Outcomes      []BetOutcome
}

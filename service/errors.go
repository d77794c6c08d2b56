package service

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the command layer for user-facing rejection.
// Persistence failures are wrapped with %w instead and treated as fatal for
// the current operation only.
var (
	// ErrNotFound indicates a race, racer, bet or wallet is absent
	ErrNotFound = errors.New("not found")

	// ErrInvalidAmount indicates a non-positive bet amount
	ErrInvalidAmount = errors.New("bet amount must be positive")

	// ErrInsufficientFunds indicates a bet exceeds the post-refund balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidSettings indicates a guild settings value out of range
	ErrInvalidSettings = errors.New("invalid settings")
)

// InsufficientFundsError carries the balance details for user messaging.
// It unwraps to ErrInsufficientFunds.
type InsufficientFundsError struct {
	Have int64
	Need int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %d, need %d", e.Have, e.Need)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

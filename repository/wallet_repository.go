package repository

import (
	"context"
	"fmt"

	"derby/database"
	"derby/models"
	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

const walletColumns = `user_id, balance, created_at, updated_at`

func (r *WalletRepository) get(ctx context.Context, userID int64, forUpdate bool) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// Get retrieves a wallet, or nil if the user has none yet
func (r *WalletRepository) Get(ctx context.Context, userID int64) (*models.Wallet, error) {
	return r.get(ctx, userID, false)
}

// GetForUpdate retrieves a wallet holding a row lock until the enclosing
// transaction ends. Every financial read-modify-write goes through this so
// concurrent operations on the same wallet serialize instead of losing
// updates.
func (r *WalletRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	return r.get(ctx, userID, true)
}

// Create creates a wallet with the given starting balance
func (r *WalletRepository) Create(ctx context.Context, userID int64, balance int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		RETURNING ` + walletColumns

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, balance).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// Credit adds to a wallet balance atomically
func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must not be negative")
	}
	if amount == 0 {
		return nil
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit wallet for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("wallet for user %d not found", userID)
	}

	return nil
}

// Debit deducts from a wallet balance atomically. The conditional update
// keeps the balance non-negative at every commit point.
func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit wallet for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		wallet, err := r.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check wallet: %w", err)
		}
		if wallet == nil {
			return fmt.Errorf("wallet for user %d not found", userID)
		}
		return fmt.Errorf("insufficient balance: have %d, need %d", wallet.Balance, amount)
	}

	return nil
}

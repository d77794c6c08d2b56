package models

import "time"

// Wallet holds a user's coin balance. Balance never goes below zero at a
// commit point; wallets are created lazily on first financial interaction
// with the guild's configured default balance.
type Wallet struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

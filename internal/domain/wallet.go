// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet holds a user's spendable and escrowed funds. One wallet per user,
// created lazily on first access and never deleted.
type Wallet struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        uuid.UUID       `db:"user_id" json:"user_id"`               // Owning user, unique
	Balance       decimal.Decimal `db:"balance" json:"balance"`               // Spendable funds, >= 0
	LockedBalance decimal.Decimal `db:"locked_balance" json:"locked_balance"` // Funds escrowed for open gigs, >= 0
	TotalEarned   decimal.Decimal `db:"total_earned" json:"total_earned"`     // Monotonic counter
	TotalSpent    decimal.Decimal `db:"total_spent" json:"total_spent"`       // Monotonic counter
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a zero-balance wallet for a user.
func NewWallet(userID uuid.UUID) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		ID:            uuid.New(),
		UserID:        userID,
		Balance:       decimal.Zero,
		LockedBalance: decimal.Zero,
		TotalEarned:   decimal.Zero,
		TotalSpent:    decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// BalanceDelta is one adjustment bundle applied atomically to a wallet.
// All four components commit together or not at all: the update is rejected
// wholesale if it would drive balance or locked_balance negative.
type BalanceDelta struct {
	Balance decimal.Decimal
	Locked  decimal.Decimal
	Earned  decimal.Decimal
	Spent   decimal.Decimal
}

// IsZero reports whether the delta would change nothing.
func (d BalanceDelta) IsZero() bool {
	return d.Balance.IsZero() && d.Locked.IsZero() && d.Earned.IsZero() && d.Spent.IsZero()
}

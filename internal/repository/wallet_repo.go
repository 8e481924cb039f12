// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"gigpay/internal/domain"
)

// WalletRepository defines the storage port for wallets.
//
// ApplyDelta is the only mutator. It must be implemented as a single atomic
// conditional update: the delta commits only if the resulting balance and
// locked_balance are both non-negative, otherwise no component of the bundle
// is applied. Concurrent callers therefore never observe or produce a
// negative balance; a caller whose precondition no longer holds sees
// applied == false and must re-read to classify the failure.
type WalletRepository interface {
	// CreateWallet inserts a new wallet. Returns util.ErrDuplicateEntry if a
	// wallet for the user already exists (lazy-creation races resolve by
	// re-fetching).
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its primary key.
	GetWalletByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Wallet, error)
	// GetWalletByUserID retrieves the wallet owned by a user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID uuid.UUID) (*domain.Wallet, error)
	// ApplyDelta atomically adjusts the wallet's balances, guarded by the
	// non-negativity preconditions. applied reports whether the row was
	// updated; false with a nil error means the wallet is missing or a
	// precondition failed, which the caller distinguishes by re-reading.
	ApplyDelta(ctx context.Context, q DBExecutor, walletID uuid.UUID, delta domain.BalanceDelta) (applied bool, err error)
}

// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"gigpay/internal/domain"
)

// TransactionRepository defines the append-only storage port for the
// transaction log. Entries are immutable once written; there is no update
// or delete. The log is always written after a successful balance delta in
// the same logical operation, never before.
type TransactionRepository interface {
	// Append inserts a new transaction record.
	Append(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// ListByWalletID retrieves transaction history for a wallet, newest
	// first, along with the total count for pagination.
	ListByWalletID(ctx context.Context, q DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
}

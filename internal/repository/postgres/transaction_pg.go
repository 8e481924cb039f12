// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
)

// TransactionRepository implements repository.TransactionRepository for
// PostgreSQL. Insert-only: there is intentionally no UPDATE or DELETE here.
type TransactionRepository struct {
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// Append inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) Append(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO wallet_transactions (id, wallet_id, user_id, kind, amount, reference_id, description, status, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		transaction.ID,
		transaction.WalletID,
		transaction.UserID,
		transaction.Kind,
		transaction.Amount,
		transaction.ReferenceID,
		transaction.Description,
		transaction.Status,
		transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction for wallet %s: %w", transaction.WalletID, err)
	}
	return nil
}

// ListByWalletID retrieves a paginated list of transactions for a wallet,
// newest first, plus the total count.
func (r *TransactionRepository) ListByWalletID(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `
		SELECT id, wallet_id, user_id, kind, amount, reference_id, description, status, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	err := q.SelectContext(ctx, &transactions, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for wallet %s: %w", walletID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM wallet_transactions WHERE wallet_id = $1`
	err = q.GetContext(ctx, &totalCount, countQuery, walletID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions for wallet %s: %w", walletID, err)
	}

	return transactions, totalCount, nil
}

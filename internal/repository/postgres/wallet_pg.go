// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct {
	// Methods receive a DBExecutor directly; no connection is held here.
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

const uniqueViolation = "23505"

// CreateWallet inserts a new wallet using the provided DBExecutor.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, locked_balance, total_earned, total_spent, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := q.ExecContext(ctx, query,
		wallet.ID, wallet.UserID, wallet.Balance, wallet.LockedBalance,
		wallet.TotalEarned, wallet.TotalSpent, wallet.CreatedAt, wallet.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return util.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create wallet for user %s: %w", wallet.UserID, err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, balance, locked_balance, total_earned, total_spent, created_at, updated_at
              FROM wallets WHERE id = $1`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %s: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByUserID retrieves the wallet owned by a user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, user_id, balance, locked_balance, total_earned, total_spent, created_at, updated_at
              FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by user ID %s: %w", userID, err)
	}
	return &wallet, nil
}

// ApplyDelta atomically adjusts the wallet's balances in a single guarded
// UPDATE. The non-negativity preconditions live in the WHERE clause so the
// database evaluates them against the current row state under its own row
// lock: either the whole bundle commits or the statement matches no row.
func (r *WalletRepository) ApplyDelta(ctx context.Context, q repository.DBExecutor, walletID uuid.UUID, delta domain.BalanceDelta) (bool, error) {
	query := `UPDATE wallets
              SET balance = balance + $1,
                  locked_balance = locked_balance + $2,
                  total_earned = total_earned + $3,
                  total_spent = total_spent + $4,
                  updated_at = $5
              WHERE id = $6
                AND balance + $1 >= 0
                AND locked_balance + $2 >= 0`
	result, err := q.ExecContext(ctx, query,
		delta.Balance, delta.Locked, delta.Earned, delta.Spent,
		time.Now().UTC(), walletID)
	if err != nil {
		return false, fmt.Errorf("failed to apply delta to wallet %s: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for wallet %s: %w", walletID, err)
	}
	return rowsAffected > 0, nil
}

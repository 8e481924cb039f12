// internal/service/ledger_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

// maxApplyAttempts bounds the optimistic retry loop on a wallet update.
const maxApplyAttempts = 3

// LedgerService owns all wallet balance state and the append-only
// transaction log behind it. ApplyDelta is the only way any component moves
// money; Record is the only way anything reaches the log.
type LedgerService interface {
	// GetOrCreateWallet returns the user's wallet, creating an empty one on
	// first access.
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// GetWallet returns the user's wallet or util.ErrWalletNotFound.
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// ApplyDelta atomically applies the delta bundle to the wallet, retrying
	// a bounded number of times when the guarded update loses a race.
	// Returns the refreshed wallet, or ErrWalletNotFound,
	// ErrInsufficientFunds, ErrInsufficientLockedFunds or ErrContention.
	ApplyDelta(ctx context.Context, walletID uuid.UUID, delta domain.BalanceDelta) (*domain.Wallet, error)
	// Record appends an entry to the transaction log. Must only be called
	// after the corresponding delta succeeded; a failed delta never produces
	// an entry.
	Record(ctx context.Context, transaction *domain.Transaction) error

	// Out-of-band money operations (trusted amounts, no gateway).
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error)
	// Transactions returns the user's wallet history, newest first.
	Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error)
}

// ledgerService implements LedgerService over the storage ports.
type ledgerService struct {
	dbExecutor      repository.DBExecutor
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	logger          *slog.Logger
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	logger *slog.Logger,
) LedgerService {
	return &ledgerService{
		dbExecutor:      dbExecutor,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// GetOrCreateWallet returns the user's wallet, lazily creating it. A
// concurrent creation race surfaces as a duplicate insert and resolves by
// re-reading the winner's row.
func (s *ledgerService) GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("get or create wallet: failed to get wallet for user %s: %w", userID, err)
	}

	wallet = domain.NewWallet(userID)
	if err := s.walletRepo.CreateWallet(ctx, s.dbExecutor, wallet); err != nil {
		if errors.Is(err, util.ErrDuplicateEntry) {
			return s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
		}
		return nil, fmt.Errorf("get or create wallet: failed to create wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// GetWallet returns the user's wallet without creating one.
func (s *ledgerService) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet: failed to get wallet for user %s: %w", userID, err)
	}
	return wallet, nil
}

// ApplyDelta applies the delta bundle through the repository's guarded
// update. When the update matches no row the wallet is re-read to classify
// the failure: missing wallet, a violated precondition, or a lost race. The
// race case is retried up to maxApplyAttempts before giving up with
// ErrContention; no delta component is ever partially applied.
func (s *ledgerService) ApplyDelta(ctx context.Context, walletID uuid.UUID, delta domain.BalanceDelta) (*domain.Wallet, error) {
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		applied, err := s.walletRepo.ApplyDelta(ctx, s.dbExecutor, walletID, delta)
		if err != nil {
			return nil, fmt.Errorf("apply delta: wallet %s: %w", walletID, err)
		}
		if applied {
			wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
			if err != nil {
				return nil, fmt.Errorf("apply delta: failed to re-fetch wallet %s: %w", walletID, err)
			}
			return wallet, nil
		}

		wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
		if err != nil {
			if errors.Is(err, util.ErrNotFound) {
				return nil, util.ErrWalletNotFound
			}
			return nil, fmt.Errorf("apply delta: failed to refresh wallet %s: %w", walletID, err)
		}
		if wallet.Balance.Add(delta.Balance).IsNegative() {
			return nil, util.ErrInsufficientFunds
		}
		if wallet.LockedBalance.Add(delta.Locked).IsNegative() {
			return nil, util.ErrInsufficientLockedFunds
		}
		// The refreshed row satisfies the preconditions, so the guarded
		// update lost a race with a concurrent writer. Try again.
	}
	return nil, util.ErrContention
}

// Record appends the transaction to the log. The append sits outside any
// multi-record transaction: if it fails after a successful delta the wallet
// state stands and the gap is reported for out-of-band reconciliation.
func (s *ledgerService) Record(ctx context.Context, transaction *domain.Transaction) error {
	if err := s.transactionRepo.Append(ctx, s.dbExecutor, transaction); err != nil {
		s.logger.Error("transaction log append failed, ledger entry missing for applied delta",
			"wallet_id", transaction.WalletID,
			"kind", transaction.Kind,
			"amount", transaction.Amount,
			"error", err)
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

// Deposit credits a trusted amount to the user's wallet.
func (s *ledgerService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: %w", err)
	}

	wallet, err = s.ApplyDelta(ctx, wallet.ID, domain.BalanceDelta{Balance: amount})
	if err != nil {
		return nil, nil, fmt.Errorf("deposit: %w", err)
	}

	transaction := domain.NewTransaction(wallet.ID, userID, domain.TransactionKindDeposit, amount, nil,
		fmt.Sprintf("Added %s to wallet", amount.StringFixed(2)))
	if err := s.Record(ctx, transaction); err != nil {
		// Money moved; the missing log entry is reconciled out-of-band.
		return wallet, nil, nil
	}

	return wallet, transaction, nil
}

// Withdraw debits a trusted amount from the user's wallet.
func (s *ledgerService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, *domain.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidInput
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: %w", err)
	}

	if wallet.Balance.LessThan(amount) {
		return nil, nil, util.ErrInsufficientFunds
	}

	wallet, err = s.ApplyDelta(ctx, wallet.ID, domain.BalanceDelta{Balance: amount.Neg()})
	if err != nil {
		return nil, nil, fmt.Errorf("withdraw: %w", err)
	}

	transaction := domain.NewTransaction(wallet.ID, userID, domain.TransactionKindWithdrawal, amount, nil,
		fmt.Sprintf("Withdrew %s from wallet", amount.StringFixed(2)))
	if err := s.Record(ctx, transaction); err != nil {
		return wallet, nil, nil
	}

	return wallet, transaction, nil
}

// Transactions returns the user's wallet history, newest first. A user
// without a wallet simply has no history yet.
func (s *ledgerService) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Transaction, int64, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return []domain.Transaction{}, 0, nil
		}
		return nil, 0, fmt.Errorf("transactions: failed to get wallet for user %s: %w", userID, err)
	}

	transactions, totalCount, err := s.transactionRepo.ListByWalletID(ctx, s.dbExecutor, wallet.ID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("transactions: %w", err)
	}
	return transactions, totalCount, nil
}

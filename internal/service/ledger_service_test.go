// internal/service/ledger_service_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gigpay/internal/domain"
	"gigpay/internal/util"
)

func TestLedgerService_GetOrCreateWallet(t *testing.T) {
	userID := uuid.New()

	t.Run("returns existing wallet", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		existing := domain.NewWallet(userID)
		walletRepo.On("GetWalletByUserID", mock.Anything, mock.Anything, userID).Return(existing, nil)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		wallet, err := svc.GetOrCreateWallet(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, wallet.ID)
		walletRepo.AssertExpectations(t)
	})

	t.Run("creates wallet on first access", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		walletRepo.On("GetWalletByUserID", mock.Anything, mock.Anything, userID).Return(nil, util.ErrNotFound)
		walletRepo.On("CreateWallet", mock.Anything, mock.Anything, mock.MatchedBy(func(w *domain.Wallet) bool {
			return w.UserID == userID && w.Balance.IsZero() && w.LockedBalance.IsZero()
		})).Return(nil)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		wallet, err := svc.GetOrCreateWallet(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, userID, wallet.UserID)
		walletRepo.AssertExpectations(t)
	})

	t.Run("creation race resolves to the winner's wallet", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		winner := domain.NewWallet(userID)
		walletRepo.On("GetWalletByUserID", mock.Anything, mock.Anything, userID).Return(nil, util.ErrNotFound).Once()
		walletRepo.On("CreateWallet", mock.Anything, mock.Anything, mock.Anything).Return(util.ErrDuplicateEntry)
		walletRepo.On("GetWalletByUserID", mock.Anything, mock.Anything, userID).Return(winner, nil).Once()

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		wallet, err := svc.GetOrCreateWallet(context.Background(), userID)

		require.NoError(t, err)
		assert.Equal(t, winner.ID, wallet.ID)
		walletRepo.AssertExpectations(t)
	})
}

func TestLedgerService_ApplyDelta_Classification(t *testing.T) {
	walletID := uuid.New()
	delta := domain.BalanceDelta{Balance: decimal.NewFromInt(-50)}

	t.Run("missing wallet", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, delta).Return(false, nil)
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(nil, util.ErrNotFound)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		_, err := svc.ApplyDelta(context.Background(), walletID, delta)

		assert.ErrorIs(t, err, util.ErrWalletNotFound)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		poor := domain.NewWallet(uuid.New())
		poor.Balance = decimal.NewFromInt(10)
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, delta).Return(false, nil)
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(poor, nil)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		_, err := svc.ApplyDelta(context.Background(), walletID, delta)

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
	})

	t.Run("insufficient locked balance", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		wallet := domain.NewWallet(uuid.New())
		wallet.LockedBalance = decimal.NewFromInt(5)
		unlockDelta := domain.BalanceDelta{Balance: decimal.NewFromInt(20), Locked: decimal.NewFromInt(-20)}
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, unlockDelta).Return(false, nil)
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(wallet, nil)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		_, err := svc.ApplyDelta(context.Background(), walletID, unlockDelta)

		assert.ErrorIs(t, err, util.ErrInsufficientLockedFunds)
	})

	t.Run("persistent races give up with contention", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		// The re-read always satisfies the preconditions, so every failed
		// update classifies as a lost race and the loop exhausts.
		rich := domain.NewWallet(uuid.New())
		rich.Balance = decimal.NewFromInt(1000)
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, delta).Return(false, nil).Times(maxApplyAttempts)
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(rich, nil).Times(maxApplyAttempts)

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		_, err := svc.ApplyDelta(context.Background(), walletID, delta)

		assert.ErrorIs(t, err, util.ErrContention)
		walletRepo.AssertExpectations(t)
	})

	t.Run("retry succeeds after a lost race", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		wallet := domain.NewWallet(uuid.New())
		wallet.Balance = decimal.NewFromInt(1000)
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, delta).Return(false, nil).Once()
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(wallet, nil).Once()
		walletRepo.On("ApplyDelta", mock.Anything, mock.Anything, walletID, delta).Return(true, nil).Once()
		walletRepo.On("GetWalletByID", mock.Anything, mock.Anything, walletID).Return(wallet, nil).Once()

		svc := NewLedgerService(nil, walletRepo, new(MockTransactionRepository), testLogger())
		got, err := svc.ApplyDelta(context.Background(), walletID, delta)

		require.NoError(t, err)
		assert.Equal(t, wallet.ID, got.ID)
		walletRepo.AssertExpectations(t)
	})
}

func TestLedgerService_Deposit(t *testing.T) {
	t.Run("rejects non-positive amounts", func(t *testing.T) {
		svc := NewLedgerService(nil, newFakeWalletStore(), newFakeTransactionStore(), testLogger())

		_, _, err := svc.Deposit(context.Background(), uuid.New(), decimal.Zero)
		assert.ErrorIs(t, err, util.ErrInvalidInput)

		_, _, err = svc.Deposit(context.Background(), uuid.New(), decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("credits the wallet and logs a deposit entry", func(t *testing.T) {
		wallets := newFakeWalletStore()
		log := newFakeTransactionStore()
		svc := NewLedgerService(nil, wallets, log, testLogger())
		userID := uuid.New()

		wallet, transaction, err := svc.Deposit(context.Background(), userID, decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(100)))
		require.NotNil(t, transaction)
		assert.Equal(t, domain.TransactionKindDeposit, transaction.Kind)
		assert.Len(t, log.byKind(wallet.ID, domain.TransactionKindDeposit), 1)
	})
}

func TestLedgerService_Withdraw(t *testing.T) {
	wallets := newFakeWalletStore()
	log := newFakeTransactionStore()
	svc := NewLedgerService(nil, wallets, log, testLogger())
	userID := uuid.New()

	_, _, err := svc.Withdraw(context.Background(), userID, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, util.ErrWalletNotFound)

	_, _, err = svc.Deposit(context.Background(), userID, decimal.NewFromInt(50))
	require.NoError(t, err)

	_, _, err = svc.Withdraw(context.Background(), userID, decimal.NewFromInt(80))
	assert.ErrorIs(t, err, util.ErrInsufficientFunds)

	wallet, transaction, err := svc.Withdraw(context.Background(), userID, decimal.NewFromInt(30))
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, domain.TransactionKindWithdrawal, transaction.Kind)
}

// Concurrent deposits through the guarded update must all land: the bounded
// retry plus re-read loop absorbs update races without losing a credit.
func TestLedgerService_ConcurrentDeposits(t *testing.T) {
	wallets := newFakeWalletStore()
	svc := NewLedgerService(nil, wallets, newFakeTransactionStore(), testLogger())
	userID := uuid.New()

	// Seed the wallet so concurrent creation is not what is being tested.
	_, _, err := svc.Deposit(context.Background(), userID, decimal.NewFromInt(1))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.Deposit(context.Background(), userID, decimal.NewFromInt(5))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	wallet, err := svc.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(1+workers*5)),
		"expected %d, got %s", 1+workers*5, wallet.Balance)
}

func TestLedgerService_Transactions(t *testing.T) {
	wallets := newFakeWalletStore()
	log := newFakeTransactionStore()
	svc := NewLedgerService(nil, wallets, log, testLogger())
	userID := uuid.New()

	// No wallet yet means an empty history, not an error.
	transactions, total, err := svc.Transactions(context.Background(), userID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, transactions)
	assert.Zero(t, total)

	for i := 0; i < 3; i++ {
		_, _, err := svc.Deposit(context.Background(), userID, decimal.NewFromInt(10))
		require.NoError(t, err)
	}

	transactions, total, err = svc.Transactions(context.Background(), userID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
	assert.Equal(t, int64(3), total)
}

func TestLedgerService_RecordFailureDoesNotFailMoneyMovement(t *testing.T) {
	wallets := newFakeWalletStore()
	transactionRepo := new(MockTransactionRepository)
	transactionRepo.On("Append", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("log unavailable"))

	svc := NewLedgerService(nil, wallets, transactionRepo, testLogger())
	userID := uuid.New()

	wallet, transaction, err := svc.Deposit(context.Background(), userID, decimal.NewFromInt(40))

	require.NoError(t, err)
	assert.Nil(t, transaction)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(40)))
}

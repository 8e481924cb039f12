// internal/service/escrow_service_test.go
package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigpay/internal/domain"
	"gigpay/internal/util"
)

// escrowFixture wires an escrow service over in-memory stores with a funded
// sponsor wallet.
func escrowFixture(t *testing.T, balance int64) (EscrowService, LedgerService, *fakeTransactionStore, uuid.UUID) {
	t.Helper()
	wallets := newFakeWalletStore()
	log := newFakeTransactionStore()
	ledger := NewLedgerService(nil, wallets, log, testLogger())
	sponsorID := uuid.New()
	if balance > 0 {
		_, _, err := ledger.Deposit(context.Background(), sponsorID, decimal.NewFromInt(balance))
		require.NoError(t, err)
	}
	return NewEscrowService(ledger), ledger, log, sponsorID
}

func TestEscrowService_Lock(t *testing.T) {
	t.Run("moves funds from balance to locked", func(t *testing.T) {
		escrow, _, log, sponsorID := escrowFixture(t, 100)
		gigID := uuid.New()

		wallet, err := escrow.Lock(context.Background(), sponsorID, gigID, decimal.NewFromInt(60))

		require.NoError(t, err)
		assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(40)))
		assert.True(t, wallet.LockedBalance.Equal(decimal.NewFromInt(60)))

		entries := log.byKind(wallet.ID, domain.TransactionKindLock)
		require.Len(t, entries, 1)
		require.NotNil(t, entries[0].ReferenceID)
		assert.Equal(t, gigID, *entries[0].ReferenceID)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		escrow, _, _, sponsorID := escrowFixture(t, 100)

		_, err := escrow.Lock(context.Background(), sponsorID, uuid.New(), decimal.Zero)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		escrow, ledger, log, sponsorID := escrowFixture(t, 50)

		_, err := escrow.Lock(context.Background(), sponsorID, uuid.New(), decimal.NewFromInt(60))

		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		wallet, err := ledger.GetWallet(context.Background(), sponsorID)
		require.NoError(t, err)
		assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(50)), "failed lock must not touch the balance")
		assert.Empty(t, log.byKind(wallet.ID, domain.TransactionKindLock), "failed lock must not reach the log")
	})
}

func TestEscrowService_Unlock(t *testing.T) {
	t.Run("restores the locked amount", func(t *testing.T) {
		escrow, _, log, sponsorID := escrowFixture(t, 100)
		gigID := uuid.New()
		_, err := escrow.Lock(context.Background(), sponsorID, gigID, decimal.NewFromInt(60))
		require.NoError(t, err)

		wallet, err := escrow.Unlock(context.Background(), sponsorID, gigID, decimal.NewFromInt(60))

		require.NoError(t, err)
		assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(100)))
		assert.True(t, wallet.LockedBalance.IsZero())
		assert.Len(t, log.byKind(wallet.ID, domain.TransactionKindUnlock), 1)
	})

	t.Run("insufficient locked balance", func(t *testing.T) {
		escrow, _, _, sponsorID := escrowFixture(t, 100)
		_, err := escrow.Lock(context.Background(), sponsorID, uuid.New(), decimal.NewFromInt(10))
		require.NoError(t, err)

		_, err = escrow.Unlock(context.Background(), sponsorID, uuid.New(), decimal.NewFromInt(20))
		assert.ErrorIs(t, err, util.ErrInsufficientLockedFunds)
	})

	t.Run("unknown sponsor", func(t *testing.T) {
		escrow, _, _, _ := escrowFixture(t, 0)

		_, err := escrow.Unlock(context.Background(), uuid.New(), uuid.New(), decimal.NewFromInt(10))
		assert.ErrorIs(t, err, util.ErrWalletNotFound)
	})
}

// Two concurrent locks of 60 against a balance of 100: exactly one may win
// and the final balance is 40. The guarded update, not the read-side check,
// is what enforces this.
func TestEscrowService_ConcurrentLocksSingleWinner(t *testing.T) {
	escrow, ledger, _, sponsorID := escrowFixture(t, 100)
	amount := decimal.NewFromInt(60)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = escrow.Lock(context.Background(), sponsorID, uuid.New(), amount)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one lock may win the race")

	wallet, err := ledger.GetWallet(context.Background(), sponsorID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(40)), "balance is %s", wallet.Balance)
	assert.True(t, wallet.LockedBalance.Equal(amount), "locked is %s", wallet.LockedBalance)
}

// internal/service/escrow_service.go
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/domain"
	"gigpay/internal/util"
)

// EscrowService earmarks and releases sponsor funds tied to a specific gig.
// It does not deduplicate repeated calls for the same gig: the gig lifecycle
// guarantees each transition invokes it exactly once by flipping the gig
// status under a guarded update before any money moves.
type EscrowService interface {
	// Lock moves amount from the sponsor's spendable balance into
	// locked_balance, earmarked for gigID. Called once, at gig creation.
	Lock(ctx context.Context, sponsorID, gigID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
	// Unlock is the inverse of Lock, used when a gig is closed before
	// settlement.
	Unlock(ctx context.Context, sponsorID, gigID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error)
}

type escrowService struct {
	ledger LedgerService
}

// NewEscrowService creates a new EscrowService on top of the ledger.
func NewEscrowService(ledger LedgerService) EscrowService {
	return &escrowService{ledger: ledger}
}

// Lock escrows amount in the sponsor's wallet for gigID.
func (s *escrowService) Lock(ctx context.Context, sponsorID, gigID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	wallet, err := s.ledger.GetOrCreateWallet(ctx, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("lock funds: %w", err)
	}
	if wallet.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}

	wallet, err = s.ledger.ApplyDelta(ctx, wallet.ID, domain.BalanceDelta{
		Balance: amount.Neg(),
		Locked:  amount,
	})
	if err != nil {
		return nil, fmt.Errorf("lock funds: %w", err)
	}

	entry := domain.NewTransaction(wallet.ID, sponsorID, domain.TransactionKindLock, amount, &gigID,
		fmt.Sprintf("Locked %s for gig", amount.StringFixed(2)))
	_ = s.ledger.Record(ctx, entry) // Funds are locked either way

	return wallet, nil
}

// Unlock releases amount of escrow back to the sponsor's spendable balance.
func (s *escrowService) Unlock(ctx context.Context, sponsorID, gigID uuid.UUID, amount decimal.Decimal) (*domain.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}

	wallet, err := s.ledger.GetWallet(ctx, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("unlock funds: %w", err)
	}
	if wallet.LockedBalance.LessThan(amount) {
		return nil, util.ErrInsufficientLockedFunds
	}

	wallet, err = s.ledger.ApplyDelta(ctx, wallet.ID, domain.BalanceDelta{
		Balance: amount,
		Locked:  amount.Neg(),
	})
	if err != nil {
		return nil, fmt.Errorf("unlock funds: %w", err)
	}

	entry := domain.NewTransaction(wallet.ID, sponsorID, domain.TransactionKindUnlock, amount, &gigID,
		fmt.Sprintf("Unlocked %s from gig", amount.StringFixed(2)))
	_ = s.ledger.Record(ctx, entry)

	return wallet, nil
}

// internal/service/settlement_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

// SettlementResult is the outcome of a settle call.
type SettlementResult struct {
	ApplicationID uuid.UUID       `json:"application_id"`
	Amount        decimal.Decimal `json:"amount"`
	AlreadyPaid   bool            `json:"already_paid"`
	// SponsorSettled is false when the sponsor leg could not be applied and
	// was recorded for out-of-band reconciliation.
	SponsorSettled bool           `json:"sponsor_settled"`
	WorkerWallet   *domain.Wallet `json:"worker_wallet,omitempty"`
}

// CashoutReceipt is returned to the worker on a cashout request. Cashout
// records a withdrawal intent against the already-settled balance; it moves
// no money itself.
type CashoutReceipt struct {
	ApplicationID    uuid.UUID       `json:"application_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	CashoutDate      time.Time       `json:"cashout_date"`
	AlreadyCashedOut bool            `json:"already_cashed_out"`
}

// SettlementService transfers escrowed funds from sponsor to worker once a
// gig completes, and records worker cashout intents. Both operations are
// idempotent: repeating them after the paid/cashed_out guard is set is a
// success that moves nothing.
type SettlementService interface {
	Settle(ctx context.Context, applicationID uuid.UUID) (*SettlementResult, error)
	Cashout(ctx context.Context, applicationID, requesterID uuid.UUID) (*CashoutReceipt, error)
}

type settlementService struct {
	dbExecutor      repository.DBExecutor
	applicationRepo repository.ApplicationRepository
	gigRepo         repository.GigRepository
	ledger          LedgerService
	logger          *slog.Logger
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	dbExecutor repository.DBExecutor,
	applicationRepo repository.ApplicationRepository,
	gigRepo repository.GigRepository,
	ledger LedgerService,
	logger *slog.Logger,
) SettlementService {
	return &settlementService{
		dbExecutor:      dbExecutor,
		applicationRepo: applicationRepo,
		gigRepo:         gigRepo,
		ledger:          ledger,
		logger:          logger,
	}
}

// Settle pays the accepted worker of a completed gig out of the sponsor's
// escrow. The paid guard is claimed first with a conditional update, so
// exactly one caller performs the money movement; every later or concurrent
// call reports idempotent success. The worker leg runs before the sponsor
// leg and is never held hostage by it: a failing sponsor leg is recorded as
// a failed payment entry and surfaced to operators instead of being rolled
// back.
func (s *settlementService) Settle(ctx context.Context, applicationID uuid.UUID) (*SettlementResult, error) {
	application, err := s.applicationRepo.GetApplicationByID(ctx, s.dbExecutor, applicationID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("settle: %w", err)
	}

	gig, err := s.gigRepo.GetGigByID(ctx, s.dbExecutor, application.GigID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrGigNotFound
		}
		return nil, fmt.Errorf("settle: %w", err)
	}

	if application.Status != domain.ApplicationStatusAccepted {
		return nil, fmt.Errorf("settle: application %s is %s, not accepted: %w",
			applicationID, application.Status, util.ErrInvalidTransition)
	}
	if gig.Status != domain.GigStatusCompleted {
		return nil, fmt.Errorf("settle: gig %s is %s, not completed: %w",
			gig.ID, gig.Status, util.ErrInvalidTransition)
	}

	amount := gig.Budget
	result := &SettlementResult{ApplicationID: applicationID, Amount: amount}

	if application.Paid {
		result.AlreadyPaid = true
		result.SponsorSettled = true
		return result, nil
	}

	// Claim the idempotency guard. The loser of a concurrent race sees no
	// row updated and reports success without touching any wallet.
	claimed, err := s.applicationRepo.MarkPaid(ctx, s.dbExecutor, applicationID)
	if err != nil {
		return nil, fmt.Errorf("settle: %w", err)
	}
	if !claimed {
		result.AlreadyPaid = true
		result.SponsorSettled = true
		return result, nil
	}

	// Worker leg: credit the payee. The wallet is created if absent.
	workerWallet, err := s.ledger.GetOrCreateWallet(ctx, application.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("settle: worker leg: %w", err)
	}
	updatedWorker, err := s.ledger.ApplyDelta(ctx, workerWallet.ID, domain.BalanceDelta{
		Balance: amount,
		Earned:  amount,
	})
	if err != nil {
		// The paid guard is claimed but no money moved. Record the gap in
		// the log so reconciliation can find it, like the sponsor leg below.
		s.logger.Error("settlement worker leg failed after claiming paid guard",
			"application_id", applicationID, "amount", amount, "error", err)
		failedEntry := domain.NewTransaction(workerWallet.ID, application.PlayerID,
			domain.TransactionKindPayment, amount, &applicationID,
			fmt.Sprintf("Payment for gig: %s", gig.Title))
		failedEntry.Status = domain.TransactionStatusFailed
		_ = s.ledger.Record(ctx, failedEntry)
		return nil, fmt.Errorf("settle: worker leg: %w", err)
	}
	result.WorkerWallet = updatedWorker

	workerEntry := domain.NewTransaction(workerWallet.ID, application.PlayerID,
		domain.TransactionKindPayment, amount, &applicationID,
		fmt.Sprintf("Payment for gig: %s", gig.Title))
	_ = s.ledger.Record(ctx, workerEntry)

	// Sponsor leg: burn the escrow. Independently atomic; a failure here is
	// a partial settlement, recorded and reconciled out-of-band, never
	// rolled back (the worker leg favors the payee).
	result.SponsorSettled = s.settleSponsorLeg(ctx, gig, applicationID, amount)

	return result, nil
}

// settleSponsorLeg debits the sponsor's locked balance. Returns false, after
// recording the failure, when the leg cannot be applied.
func (s *settlementService) settleSponsorLeg(ctx context.Context, gig *domain.Gig, applicationID uuid.UUID, amount decimal.Decimal) bool {
	sponsorWallet, err := s.ledger.GetWallet(ctx, gig.CreatorID)
	if err != nil {
		// No sponsor wallet record: the worker was paid with nothing to
		// debit. Funds conservation is broken until operators reconcile.
		s.logger.Error("partial settlement: sponsor wallet missing, worker leg stands",
			"application_id", applicationID, "gig_id", gig.ID,
			"sponsor_id", gig.CreatorID, "amount", amount, "error", err)
		return false
	}

	_, err = s.ledger.ApplyDelta(ctx, sponsorWallet.ID, domain.BalanceDelta{
		Locked: amount.Neg(),
		Spent:  amount,
	})
	if err != nil {
		s.logger.Error("partial settlement: sponsor leg failed, worker leg stands",
			"application_id", applicationID, "gig_id", gig.ID,
			"sponsor_id", gig.CreatorID, "amount", amount, "error", err)
		failedEntry := domain.NewTransaction(sponsorWallet.ID, gig.CreatorID,
			domain.TransactionKindPayment, amount.Neg(), &applicationID,
			fmt.Sprintf("Payment for gig: %s", gig.Title))
		failedEntry.Status = domain.TransactionStatusFailed
		_ = s.ledger.Record(ctx, failedEntry)
		return false
	}

	sponsorEntry := domain.NewTransaction(sponsorWallet.ID, gig.CreatorID,
		domain.TransactionKindPayment, amount.Neg(), &applicationID,
		fmt.Sprintf("Payment for gig: %s", gig.Title))
	_ = s.ledger.Record(ctx, sponsorEntry)
	return true
}

// Cashout records the worker's withdrawal intent for a settled gig. Moves no
// money; returns the gig's budget and payout method as a receipt. Repeating
// a cashout is harmless and returns the original receipt.
func (s *settlementService) Cashout(ctx context.Context, applicationID, requesterID uuid.UUID) (*CashoutReceipt, error) {
	application, err := s.applicationRepo.GetApplicationByID(ctx, s.dbExecutor, applicationID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("cashout: %w", err)
	}

	if application.PlayerID != requesterID {
		return nil, util.ErrForbidden
	}

	gig, err := s.gigRepo.GetGigByID(ctx, s.dbExecutor, application.GigID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrGigNotFound
		}
		return nil, fmt.Errorf("cashout: %w", err)
	}

	if application.Status != domain.ApplicationStatusAccepted {
		return nil, fmt.Errorf("cashout: application %s is %s, not accepted: %w",
			applicationID, application.Status, util.ErrInvalidTransition)
	}
	if gig.Status != domain.GigStatusCompleted {
		return nil, fmt.Errorf("cashout: gig %s is %s, not completed: %w",
			gig.ID, gig.Status, util.ErrInvalidTransition)
	}

	receipt := &CashoutReceipt{
		ApplicationID: applicationID,
		Amount:        gig.Budget,
		PaymentMethod: gig.Method,
	}

	if application.CashedOut {
		receipt.AlreadyCashedOut = true
		if application.CashoutDate != nil {
			receipt.CashoutDate = *application.CashoutDate
		}
		return receipt, nil
	}

	claimed, err := s.applicationRepo.MarkCashedOut(ctx, s.dbExecutor, applicationID)
	if err != nil {
		return nil, fmt.Errorf("cashout: %w", err)
	}
	if !claimed {
		// Lost a race with a concurrent cashout; report the recorded date.
		refreshed, err := s.applicationRepo.GetApplicationByID(ctx, s.dbExecutor, applicationID)
		if err == nil && refreshed.CashoutDate != nil {
			receipt.CashoutDate = *refreshed.CashoutDate
		}
		receipt.AlreadyCashedOut = true
		return receipt, nil
	}

	// Report the timestamp the guard update persisted, not a second clock
	// read that could drift from it.
	refreshed, err := s.applicationRepo.GetApplicationByID(ctx, s.dbExecutor, applicationID)
	if err == nil && refreshed.CashoutDate != nil {
		receipt.CashoutDate = *refreshed.CashoutDate
	} else {
		receipt.CashoutDate = time.Now().UTC()
	}
	return receipt, nil
}

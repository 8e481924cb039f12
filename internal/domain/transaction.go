// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionKind defines the type of a wallet transaction.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindLock       TransactionKind = "lock"
	TransactionKindUnlock     TransactionKind = "unlock"
	TransactionKindPayment    TransactionKind = "payment"
)

// TransactionStatus defines the status of a wallet transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	// TransactionStatusFailed marks a leg of a settlement that could not be
	// applied. Failed entries are never retried in place; they are the
	// reconciliation queue for operators.
	TransactionStatusFailed TransactionStatus = "failed"
)

// Transaction is one append-only record of a balance mutation. Together with
// the wallet balances it forms the ledger: the sole source of truth for
// reconciling balances against history. Immutable once written.
type Transaction struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	WalletID    uuid.UUID         `db:"wallet_id" json:"wallet_id"`
	UserID      uuid.UUID         `db:"user_id" json:"user_id"`
	Kind        TransactionKind   `db:"kind" json:"kind"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"` // Signed for payment legs, unsigned otherwise
	ReferenceID *uuid.UUID        `db:"reference_id" json:"reference_id"` // Gig or application id, if any
	Description string            `db:"description" json:"description"`
	Status      TransactionStatus `db:"status" json:"status"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}

// NewTransaction creates a completed transaction entry for a wallet.
func NewTransaction(walletID, userID uuid.UUID, kind TransactionKind, amount decimal.Decimal, referenceID *uuid.UUID, description string) *Transaction {
	return &Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		UserID:      userID,
		Kind:        kind,
		Amount:      amount,
		ReferenceID: referenceID,
		Description: description,
		Status:      TransactionStatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
}

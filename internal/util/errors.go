// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input provided")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("operation not permitted for this caller")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrGigNotFound         = errors.New("gig not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrDuplicateEntry      = errors.New("duplicate entry")

	// Ledger precondition failures. Each rejects the whole delta bundle.
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrInsufficientLockedFunds = errors.New("insufficient locked funds")

	// ErrContention signals that an optimistic wallet update kept losing its
	// compare-and-swap within the bounded retry budget.
	ErrContention = errors.New("wallet update contention, retries exhausted")

	// State machine violations.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyApplied    = errors.New("an open application for this gig already exists")
)

// IsError checks if the given error wraps the target error.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// internal/domain/application.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of a gig application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected" // Terminal
)

// CanTransition reports whether moving from s to next is legal.
// pending -> {accepted, rejected}; accepted and rejected are terminal.
func (s ApplicationStatus) CanTransition(next ApplicationStatus) bool {
	if s != ApplicationStatusPending {
		return false
	}
	return next == ApplicationStatusAccepted || next == ApplicationStatusRejected
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	}
	return false
}

// Application is a player's bid on a gig. Paid and CashedOut are idempotency
// guards, not lifecycle states: each gates a one-time financial side effect.
type Application struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	GigID       uuid.UUID         `db:"gig_id" json:"gig_id"`
	PlayerID    uuid.UUID         `db:"player_id" json:"player_id"` // Worker
	CoverLetter string            `db:"cover_letter" json:"cover_letter"`
	Status      ApplicationStatus `db:"status" json:"status"`
	Paid        bool              `db:"paid" json:"paid"`
	PaymentDate *time.Time        `db:"payment_date" json:"payment_date"`
	CashedOut   bool              `db:"cashed_out" json:"cashed_out"`
	CashoutDate *time.Time        `db:"cashout_date" json:"cashout_date"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`
}

// NewApplication creates a pending application by playerID on gigID.
func NewApplication(gigID, playerID uuid.UUID, coverLetter string) *Application {
	now := time.Now().UTC()
	return &Application{
		ID:          uuid.New(),
		GigID:       gigID,
		PlayerID:    playerID,
		CoverLetter: coverLetter,
		Status:      ApplicationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

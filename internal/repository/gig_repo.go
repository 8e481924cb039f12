// internal/repository/gig_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gigpay/internal/domain"
)

// GigFilter narrows a gig listing. Zero values mean "no constraint".
type GigFilter struct {
	Search    string // Matches title, description or tags, case-insensitive
	Location  string
	Game      string
	Tags      []string // All must be present
	MinBudget *decimal.Decimal
	MaxBudget *decimal.Decimal
	Status    domain.GigStatus
}

// GigRepository defines the storage port for gigs. UpdateStatus is a
// conditional write guarded by the expected current status so that each
// lifecycle transition, and the escrow side effect hanging off it, fires at
// most once under concurrent requests.
type GigRepository interface {
	CreateGig(ctx context.Context, q DBExecutor, gig *domain.Gig) error
	GetGigByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Gig, error)
	ListGigs(ctx context.Context, q DBExecutor, filter GigFilter) ([]domain.Gig, error)
	ListGigsByCreator(ctx context.Context, q DBExecutor, creatorID uuid.UUID) ([]domain.Gig, error)
	// UpdateStatus flips the gig from the expected status to the next one.
	// updated is false when the gig is missing or no longer in the expected
	// status (another request won the transition).
	UpdateStatus(ctx context.Context, q DBExecutor, id uuid.UUID, from, to domain.GigStatus) (updated bool, err error)
	// DeleteGig removes a gig row. Used only to back out a freshly inserted
	// gig whose escrow lock failed; committed gigs are closed, not deleted.
	DeleteGig(ctx context.Context, q DBExecutor, id uuid.UUID) error
}

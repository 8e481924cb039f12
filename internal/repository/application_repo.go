// internal/repository/application_repo.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"gigpay/internal/domain"
)

// ApplicationRepository defines the storage port for gig applications.
// Status flips and the paid/cashed_out idempotency guards are conditional
// writes: MarkPaid and MarkCashedOut update the row only while the guard is
// still unset, so the financial side effect they gate applies exactly once
// even under racing retries.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, q DBExecutor, application *domain.Application) error
	GetApplicationByID(ctx context.Context, q DBExecutor, id uuid.UUID) (*domain.Application, error)
	ListApplicationsByGig(ctx context.Context, q DBExecutor, gigID uuid.UUID) ([]domain.Application, error)
	ListApplicationsByPlayer(ctx context.Context, q DBExecutor, playerID uuid.UUID) ([]domain.Application, error)
	// HasOpenApplication reports whether the player already holds a
	// non-rejected application on the gig.
	HasOpenApplication(ctx context.Context, q DBExecutor, gigID, playerID uuid.UUID) (bool, error)
	// GetAcceptedByGig returns the gig's single accepted application, or
	// util.ErrNotFound if none exists.
	GetAcceptedByGig(ctx context.Context, q DBExecutor, gigID uuid.UUID) (*domain.Application, error)
	// UpdateStatus flips the application from the expected status to the
	// next one; updated is false when the row is missing or already moved.
	UpdateStatus(ctx context.Context, q DBExecutor, id uuid.UUID, from, to domain.ApplicationStatus) (updated bool, err error)
	// MarkPaid sets the paid guard; updated is false when it was already set.
	MarkPaid(ctx context.Context, q DBExecutor, id uuid.UUID) (updated bool, err error)
	// MarkCashedOut sets the cashed_out guard; updated is false when it was
	// already set.
	MarkCashedOut(ctx context.Context, q DBExecutor, id uuid.UUID) (updated bool, err error)
}

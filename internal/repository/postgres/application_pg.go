// internal/repository/postgres/application_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

const applicationColumns = `id, gig_id, player_id, cover_letter, status, paid, payment_date, cashed_out, cashout_date, created_at, updated_at`

// ApplicationRepository implements repository.ApplicationRepository for
// PostgreSQL.
type ApplicationRepository struct {
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) repository.ApplicationRepository {
	return &ApplicationRepository{}
}

// CreateApplication inserts a new application using the provided DBExecutor.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, q repository.DBExecutor, application *domain.Application) error {
	query := `INSERT INTO applications (id, gig_id, player_id, cover_letter, status, paid, cashed_out, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		application.ID, application.GigID, application.PlayerID, application.CoverLetter,
		application.Status, application.Paid, application.CashedOut,
		application.CreatedAt, application.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// GetApplicationByID retrieves an application by its ID.
func (r *ApplicationRepository) GetApplicationByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Application, error) {
	var application domain.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	err := q.GetContext(ctx, &application, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get application by ID %s: %w", id, err)
	}
	return &application, nil
}

// ListApplicationsByGig retrieves all applications on a gig, newest first.
func (r *ApplicationRepository) ListApplicationsByGig(ctx context.Context, q repository.DBExecutor, gigID uuid.UUID) ([]domain.Application, error) {
	applications := []domain.Application{}
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE gig_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &applications, query, gigID); err != nil {
		return nil, fmt.Errorf("failed to list applications for gig %s: %w", gigID, err)
	}
	return applications, nil
}

// ListApplicationsByPlayer retrieves all applications by a player, newest
// first.
func (r *ApplicationRepository) ListApplicationsByPlayer(ctx context.Context, q repository.DBExecutor, playerID uuid.UUID) ([]domain.Application, error) {
	applications := []domain.Application{}
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE player_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &applications, query, playerID); err != nil {
		return nil, fmt.Errorf("failed to list applications for player %s: %w", playerID, err)
	}
	return applications, nil
}

// HasOpenApplication reports whether the player already holds a non-rejected
// application on the gig.
func (r *ApplicationRepository) HasOpenApplication(ctx context.Context, q repository.DBExecutor, gigID, playerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM applications
                WHERE gig_id = $1 AND player_id = $2 AND status <> $3)`
	err := q.GetContext(ctx, &exists, query, gigID, playerID, domain.ApplicationStatusRejected)
	if err != nil {
		return false, fmt.Errorf("failed to check open application for gig %s: %w", gigID, err)
	}
	return exists, nil
}

// GetAcceptedByGig returns the gig's single accepted application.
func (r *ApplicationRepository) GetAcceptedByGig(ctx context.Context, q repository.DBExecutor, gigID uuid.UUID) (*domain.Application, error) {
	var application domain.Application
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE gig_id = $1 AND status = $2`
	err := q.GetContext(ctx, &application, query, gigID, domain.ApplicationStatusAccepted)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get accepted application for gig %s: %w", gigID, err)
	}
	return &application, nil
}

// UpdateStatus flips the application's status, guarded by its expected
// current status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.ApplicationStatus) (bool, error) {
	query := `UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update status of application %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for application %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// MarkPaid sets the paid guard if it is still unset.
func (r *ApplicationRepository) MarkPaid(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE applications SET paid = TRUE, payment_date = $1, updated_at = $2 WHERE id = $3 AND paid = FALSE`
	result, err := q.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark application %s paid: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for application %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// MarkCashedOut sets the cashed_out guard if it is still unset.
func (r *ApplicationRepository) MarkCashedOut(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE applications SET cashed_out = TRUE, cashout_date = $1, updated_at = $2 WHERE id = $3 AND cashed_out = FALSE`
	result, err := q.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark application %s cashed out: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for application %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// internal/repository/postgres/gig_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"gigpay/internal/domain"
	"gigpay/internal/repository"
	"gigpay/internal/util"
)

const gigColumns = `id, creator_id, title, description, game, location, tags, budget, method, status, created_at, updated_at`

// GigRepository implements repository.GigRepository for PostgreSQL.
type GigRepository struct {
}

// NewGigRepository creates a new GigRepository.
func NewGigRepository(db *sqlx.DB) repository.GigRepository {
	return &GigRepository{}
}

// CreateGig inserts a new gig using the provided DBExecutor.
func (r *GigRepository) CreateGig(ctx context.Context, q repository.DBExecutor, gig *domain.Gig) error {
	query := `INSERT INTO gigs (id, creator_id, title, description, game, location, tags, budget, method, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := q.ExecContext(ctx, query,
		gig.ID, gig.CreatorID, gig.Title, gig.Description, gig.Game, gig.Location,
		gig.Tags, gig.Budget, gig.Method, gig.Status, gig.CreatedAt, gig.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create gig: %w", err)
	}
	return nil
}

// GetGigByID retrieves a gig by its ID using the provided DBExecutor.
func (r *GigRepository) GetGigByID(ctx context.Context, q repository.DBExecutor, id uuid.UUID) (*domain.Gig, error) {
	var gig domain.Gig
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE id = $1`
	err := q.GetContext(ctx, &gig, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get gig by ID %s: %w", id, err)
	}
	return &gig, nil
}

// ListGigs retrieves gigs matching the filter, newest first.
func (r *GigRepository) ListGigs(ctx context.Context, q repository.DBExecutor, filter repository.GigFilter) ([]domain.Gig, error) {
	conditions := []string{}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE %[1]s OR description ILIKE %[1]s OR array_to_string(tags, ' ') ILIKE %[1]s)", pattern))
	}
	if filter.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE %s", arg("%"+filter.Location+"%")))
	}
	if filter.Game != "" {
		conditions = append(conditions, fmt.Sprintf("game ILIKE %s", arg("%"+filter.Game+"%")))
	}
	if len(filter.Tags) > 0 {
		conditions = append(conditions, fmt.Sprintf("tags @> %s", arg(pq.Array(filter.Tags))))
	}
	if filter.MinBudget != nil {
		conditions = append(conditions, fmt.Sprintf("budget >= %s", arg(*filter.MinBudget)))
	}
	if filter.MaxBudget != nil {
		conditions = append(conditions, fmt.Sprintf("budget <= %s", arg(*filter.MaxBudget)))
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = %s", arg(filter.Status)))
	}

	query := `SELECT ` + gigColumns + ` FROM gigs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	gigs := []domain.Gig{}
	if err := q.SelectContext(ctx, &gigs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list gigs: %w", err)
	}
	return gigs, nil
}

// ListGigsByCreator retrieves all gigs owned by a creator, newest first.
func (r *GigRepository) ListGigsByCreator(ctx context.Context, q repository.DBExecutor, creatorID uuid.UUID) ([]domain.Gig, error) {
	gigs := []domain.Gig{}
	query := `SELECT ` + gigColumns + ` FROM gigs WHERE creator_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &gigs, query, creatorID); err != nil {
		return nil, fmt.Errorf("failed to list gigs for creator %s: %w", creatorID, err)
	}
	return gigs, nil
}

// UpdateStatus flips the gig's status, guarded by its expected current
// status. Zero rows affected means another request already moved the gig.
func (r *GigRepository) UpdateStatus(ctx context.Context, q repository.DBExecutor, id uuid.UUID, from, to domain.GigStatus) (bool, error) {
	query := `UPDATE gigs SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update status of gig %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for gig %s: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// DeleteGig removes a gig row. Only used to back out an insert whose escrow
// lock failed.
func (r *GigRepository) DeleteGig(ctx context.Context, q repository.DBExecutor, id uuid.UUID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM gigs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete gig %s: %w", id, err)
	}
	return nil
}

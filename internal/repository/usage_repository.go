package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/services"
)

// UsageRepository counts currently-active rows per clinic for quota
// checks. Blocked and soft-deleted rows are excluded, so freeing one
// immediately frees a quota unit.
type UsageRepository struct {
	pool *pgxpool.Pool
}

func NewUsageRepository(pool *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{pool: pool}
}

func (r *UsageRepository) CountActive(ctx context.Context, clinicID uuid.UUID, resource services.Resource) (int, error) {
	var query string
	switch resource {
	case services.ResourceUsers:
		query = `SELECT COUNT(*) FROM users WHERE clinic_id = $1 AND is_active = true`
	case services.ResourceBranches:
		query = `SELECT COUNT(*) FROM branches WHERE clinic_id = $1 AND is_active = true`
	case services.ResourcePatients:
		query = `SELECT COUNT(*) FROM patients WHERE clinic_id = $1 AND is_active = true`
	default:
		return 0, fmt.Errorf("unknown resource %q", resource)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, clinicID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return count, nil
}

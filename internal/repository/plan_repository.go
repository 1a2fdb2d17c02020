package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

const planColumns = `id, name, slug, price_monthly, currency, limit_users, limit_branches, limit_clinics, limit_patients, is_active, created_at, updated_at`

func scanPlan(row pgx.Row) (*models.Plan, error) {
	p := &models.Plan{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.PriceMonthly, &p.Currency,
		&p.LimitUsers, &p.LimitBranches, &p.LimitClinics, &p.LimitPatients,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create persists a new plan. A slug collision maps to ErrDuplicateSlug.
func (r *PlanRepository) Create(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	currency := req.Currency
	if currency == "" {
		currency = "UZS"
	}

	query := fmt.Sprintf(`
		INSERT INTO plans (name, slug, price_monthly, currency, limit_users, limit_branches, limit_clinics, limit_patients, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
		RETURNING %s
	`, planColumns)

	plan, err := scanPlan(r.pool.QueryRow(ctx, query,
		req.Name, req.Slug, req.PriceMonthly, currency,
		req.LimitUsers, req.LimitBranches, req.LimitClinics, req.LimitPatients))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, services.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return plan, nil
}

// GetByID retrieves a plan by ID; returns nil when absent
func (r *PlanRepository) GetByID(ctx context.Context, planID uuid.UUID) (*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE id = $1`, planColumns)

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, planID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

// GetActiveBySlug retrieves an active plan by slug; returns nil when
// absent or deactivated.
func (r *PlanRepository) GetActiveBySlug(ctx context.Context, slug string) (*models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans WHERE slug = $1 AND is_active = true`, planColumns)

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return plan, nil
}

// List returns plans, optionally restricted to active ones
func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	query := fmt.Sprintf(`SELECT %s FROM plans`, planColumns)
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY price_monthly`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// Update applies partial changes to a plan. Limit changes only affect
// future reservations; existing resources are never retroactively removed.
func (r *PlanRepository) Update(ctx context.Context, planID uuid.UUID, req models.UpdatePlanRequest) (*models.Plan, error) {
	query := fmt.Sprintf(`
		UPDATE plans
		SET name = COALESCE($2, name),
		    price_monthly = COALESCE($3, price_monthly),
		    limit_users = COALESCE($4, limit_users),
		    limit_branches = COALESCE($5, limit_branches),
		    limit_clinics = COALESCE($6, limit_clinics),
		    limit_patients = COALESCE($7, limit_patients),
		    is_active = COALESCE($8, is_active),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, planColumns)

	plan, err := scanPlan(r.pool.QueryRow(ctx, query, planID,
		req.Name, req.PriceMonthly,
		req.LimitUsers, req.LimitBranches, req.LimitClinics, req.LimitPatients,
		req.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}
	return plan, nil
}

// Deactivate hides the plan from new activations. Existing subscriptions
// keep their plan reference and limits.
func (r *PlanRepository) Deactivate(ctx context.Context, planID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE plans SET is_active = false, updated_at = NOW() WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("failed to deactivate plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return services.ErrPlanNotFound
	}
	return nil
}

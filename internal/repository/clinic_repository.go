package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/services"
)

type ClinicRepository struct {
	pool *pgxpool.Pool
}

func NewClinicRepository(pool *pgxpool.Pool) *ClinicRepository {
	return &ClinicRepository{pool: pool}
}

// GetByID retrieves a clinic by ID; returns nil when absent
func (r *ClinicRepository) GetByID(ctx context.Context, clinicID uuid.UUID) (*models.Clinic, error) {
	query := `SELECT id, name, legal_name, status, created_at FROM clinics WHERE id = $1`

	clinic := &models.Clinic{}
	err := r.pool.QueryRow(ctx, query, clinicID).Scan(
		&clinic.ID, &clinic.Name, &clinic.LegalName, &clinic.Status, &clinic.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get clinic: %w", err)
	}
	return clinic, nil
}

// ClinicIDs returns the clinics the user directs
func (r *ClinicRepository) ClinicIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT clinic_id FROM director_links WHERE user_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list director clinics: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan clinic id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountClinics counts the clinics the user directs
func (r *ClinicRepository) CountClinics(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM director_links WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clinics: %w", err)
	}
	return count, nil
}

// WithClinicLock runs fn while holding a transaction-scoped Postgres
// advisory lock keyed by the clinic ID. Concurrent quota checks for the
// same clinic serialize here; other clinics are unaffected. The lock is
// released when the wrapping transaction commits or rolls back.
func (r *ClinicRepository) WithClinicLock(ctx context.Context, clinicID uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, clinicID); err != nil {
		return fmt.Errorf("failed to acquire clinic lock: %w", err)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ProvisionClinic creates a clinic, its trial subscription, the director
// link and a default branch in one transaction, promoting a pending
// director along the way. The per-owner advisory lock makes the clinic
// count re-check and the insert a single atomic unit, so two concurrent
// activations cannot overshoot the plan ceiling.
func (r *ClinicRepository) ProvisionClinic(ctx context.Context, params services.ProvisionParams) (*services.ProvisionResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, params.Owner.ID); err != nil {
		return nil, fmt.Errorf("failed to acquire owner lock: %w", err)
	}

	var used int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM director_links WHERE user_id = $1`, params.Owner.ID).Scan(&used); err != nil {
		return nil, fmt.Errorf("failed to count clinics: %w", err)
	}
	if used >= params.Plan.LimitClinics {
		return nil, services.ErrClinicLimitReached.
			WithDetail("current", used).
			WithDetail("limit", params.Plan.LimitClinics)
	}

	clinic := &models.Clinic{}
	err = tx.QueryRow(ctx, `
		INSERT INTO clinics (name, legal_name, status)
		VALUES ($1, $2, $3)
		RETURNING id, name, legal_name, status, created_at
	`, params.ClinicName, params.LegalName, models.ClinicStatusActive).Scan(
		&clinic.ID, &clinic.Name, &clinic.LegalName, &clinic.Status, &clinic.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}

	sub := &models.Subscription{}
	err = tx.QueryRow(ctx, `
		INSERT INTO subscriptions (clinic_id, plan_id, status, period_start, period_end, auto_renew)
		VALUES ($1, $2, $3, NOW(), NOW() + INTERVAL '30 days', true)
		RETURNING id, clinic_id, plan_id, status, period_start, period_end, auto_renew, created_at
	`, clinic.ID, params.Plan.ID, models.SubscriptionStatusTrial).Scan(
		&sub.ID, &sub.ClinicID, &sub.PlanID, &sub.Status,
		&sub.PeriodStart, &sub.PeriodEnd, &sub.AutoRenew, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO director_links (user_id, clinic_id) VALUES ($1, $2)`,
		params.Owner.ID, clinic.ID); err != nil {
		return nil, fmt.Errorf("failed to create director link: %w", err)
	}

	// The default branch is seeded with the owner's contact info.
	branch := &models.Branch{}
	err = tx.QueryRow(ctx, `
		INSERT INTO branches (clinic_id, name, address, phone, email, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, clinic_id, name, address, phone, email, is_active, created_at
	`, clinic.ID, "Main branch", params.Address, params.Owner.Phone, params.Owner.Email).Scan(
		&branch.ID, &branch.ClinicID, &branch.Name, &branch.Address,
		&branch.Phone, &branch.Email, &branch.IsActive, &branch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}

	// Promote a pending director and pin the primary clinic and branch on
	// first activation. A director adding a second clinic keeps the primary.
	query := fmt.Sprintf(`
		UPDATE users
		SET role = $2,
		    clinic_id = COALESCE(clinic_id, $3),
		    branch_id = COALESCE(branch_id, $4),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING %s
	`, userColumns)

	owner, err := scanUser(tx.QueryRow(ctx, query,
		params.Owner.ID, models.RoleClinicDirector, clinic.ID, branch.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to promote owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &services.ProvisionResult{
		Clinic:       clinic,
		Branch:       branch,
		Subscription: sub,
		Owner:        owner,
		ClinicsUsed:  used + 1,
	}, nil
}

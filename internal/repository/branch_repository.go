package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/models"
)

type BranchRepository struct {
	pool *pgxpool.Pool
}

func NewBranchRepository(pool *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{pool: pool}
}

const branchColumns = `id, clinic_id, name, address, phone, email, is_active, created_at`

func scanBranch(row pgx.Row) (*models.Branch, error) {
	b := &models.Branch{}
	err := row.Scan(&b.ID, &b.ClinicID, &b.Name, &b.Address, &b.Phone, &b.Email, &b.IsActive, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Create persists a new branch
func (r *BranchRepository) Create(ctx context.Context, clinicID uuid.UUID, req models.CreateBranchRequest) (*models.Branch, error) {
	query := fmt.Sprintf(`
		INSERT INTO branches (clinic_id, name, address, phone, email, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING %s
	`, branchColumns)

	branch, err := scanBranch(r.pool.QueryRow(ctx, query,
		clinicID, req.Name, req.Address, req.Phone, req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}
	return branch, nil
}

// GetByID retrieves a branch by ID; returns nil when absent
func (r *BranchRepository) GetByID(ctx context.Context, branchID uuid.UUID) (*models.Branch, error) {
	query := fmt.Sprintf(`SELECT %s FROM branches WHERE id = $1`, branchColumns)

	branch, err := scanBranch(r.pool.QueryRow(ctx, query, branchID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return branch, nil
}

// ListByClinic returns all branches of a clinic
func (r *BranchRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Branch, error) {
	query := fmt.Sprintf(`SELECT %s FROM branches WHERE clinic_id = $1 ORDER BY created_at`, branchColumns)

	rows, err := r.pool.Query(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		branch, err := scanBranch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan branch: %w", err)
		}
		branches = append(branches, *branch)
	}
	return branches, rows.Err()
}

// SetActive toggles a branch's active flag
func (r *BranchRepository) SetActive(ctx context.Context, branchID uuid.UUID, active bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE branches SET is_active = $2 WHERE id = $1`, branchID, active)
	if err != nil {
		return fmt.Errorf("failed to set branch active flag: %w", err)
	}
	return nil
}

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

type AssignmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

// Get returns the staff assignment of a user, or nil when unassigned
func (r *AssignmentRepository) Get(ctx context.Context, userID uuid.UUID) (*models.StaffAssignment, error) {
	query := `SELECT user_id, clinic_id, branch_id, created_at FROM staff_assignments WHERE user_id = $1`

	a := &models.StaffAssignment{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(&a.UserID, &a.ClinicID, &a.BranchID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff assignment: %w", err)
	}
	return a, nil
}

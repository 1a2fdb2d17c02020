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

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, phone, full_name, password_hash, role, clinic_id, branch_id, token_version, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.FullName,
		&user.PasswordHash,
		&user.Role,
		&user.ClinicID,
		&user.BranchID,
		&user.TokenVersion,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID; returns nil when absent
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email; returns nil when absent
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE lower(email) = lower($1)`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// CreatePending creates a self-registered account waiting for activation
func (r *UserRepository) CreatePending(ctx context.Context, email, phone, fullName, passwordHash string) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (email, phone, full_name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING %s
	`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, query, email, phone, fullName, passwordHash, models.RolePendingDirector))
	if err != nil {
		// A concurrent insert can slip past the handler's email pre-check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, services.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateStaff persists a staff or director user together with its scope
// row (staff_assignments or director_links) in one transaction, so a
// committed user is never left without its scope.
func (r *UserRepository) CreateStaff(ctx context.Context, user *models.User, clinicID uuid.UUID, branchID *uuid.UUID) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		INSERT INTO users (email, phone, full_name, password_hash, role, clinic_id, branch_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s
	`, userColumns)

	created, err := scanUser(tx.QueryRow(ctx, query,
		user.Email, user.Phone, user.FullName, user.PasswordHash,
		user.Role, clinicID, branchID, user.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, services.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	switch {
	case created.Role == models.RoleClinicDirector:
		_, err = tx.Exec(ctx,
			`INSERT INTO director_links (user_id, clinic_id) VALUES ($1, $2)`,
			created.ID, clinicID)
	case created.Role.IsStaff() && branchID != nil:
		_, err = tx.Exec(ctx,
			`INSERT INTO staff_assignments (user_id, clinic_id, branch_id) VALUES ($1, $2, $3)`,
			created.ID, clinicID, *branchID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create scope row: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return created, nil
}

// ListStaffByClinic returns the clinic's staff users, soft-deleted rows
// excluded
func (r *UserRepository) ListStaffByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE clinic_id = $1 AND role = ANY($2) AND email NOT LIKE 'deleted\_%%'
		ORDER BY created_at
	`, userColumns)

	roles := make([]string, len(models.StaffRoles))
	for i, role := range models.StaffRoles {
		roles[i] = string(role)
	}

	rows, err := r.pool.Query(ctx, query, clinicID, roles)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Update persists mutable profile fields
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET full_name = $2, phone = $3, branch_id = $4, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, user.ID, user.FullName, user.Phone, user.BranchID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if user.BranchID != nil && user.Role.IsStaff() {
		_, err = r.pool.Exec(ctx, `
			INSERT INTO staff_assignments (user_id, clinic_id, branch_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET branch_id = EXCLUDED.branch_id
		`, user.ID, user.ClinicID, *user.BranchID)
		if err != nil {
			return fmt.Errorf("failed to update staff assignment: %w", err)
		}
	}

	return nil
}

// UpdatePassword sets a new password hash and bumps the token version so
// previously issued tokens stop validating
func (r *UserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetActive toggles the active flag. Deactivation bumps the token version.
func (r *UserRepository) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	query := `
		UPDATE users
		SET is_active = $2,
		    token_version = CASE WHEN $2 THEN token_version ELSE token_version + 1 END,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, userID, active)
	if err != nil {
		return fmt.Errorf("failed to set active flag: %w", err)
	}
	return nil
}

// SoftDelete scrubs identity fields in place and deactivates the account.
// The row is retained for referential integrity and is irrecoverable.
func (r *UserRepository) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE users
		SET email = 'deleted_' || id || '@deleted.local',
		    phone = '',
		    full_name = 'Deleted user',
		    is_active = false,
		    token_version = token_version + 1,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to soft delete user: %w", err)
	}
	return nil
}

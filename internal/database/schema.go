package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema applies the schema on startup. Statements are idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS clinics (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(255) NOT NULL,
		legal_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS branches (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		clinic_id UUID NOT NULL REFERENCES clinics(id),
		name VARCHAR(255) NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email VARCHAR(255) NOT NULL UNIQUE,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		full_name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(30) NOT NULL,
		clinic_id UUID REFERENCES clinics(id),
		branch_id UUID REFERENCES branches(id),
		token_version INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS director_links (
		user_id UUID NOT NULL REFERENCES users(id),
		clinic_id UUID NOT NULL REFERENCES clinics(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id, clinic_id)
	);

	CREATE TABLE IF NOT EXISTS staff_assignments (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		clinic_id UUID NOT NULL REFERENCES clinics(id),
		branch_id UUID NOT NULL REFERENCES branches(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS plans (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(100) NOT NULL UNIQUE,
		price_monthly DECIMAL(12,2) NOT NULL DEFAULT 0,
		currency VARCHAR(10) NOT NULL DEFAULT 'UZS',
		limit_users INTEGER NOT NULL DEFAULT 0,
		limit_branches INTEGER NOT NULL DEFAULT 0,
		limit_clinics INTEGER NOT NULL DEFAULT 1,
		limit_patients INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		clinic_id UUID NOT NULL UNIQUE REFERENCES clinics(id),
		plan_id UUID NOT NULL REFERENCES plans(id),
		status VARCHAR(20) NOT NULL DEFAULT 'trial',
		period_start TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		period_end TIMESTAMPTZ NOT NULL,
		auto_renew BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS reset_codes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id),
		code VARCHAR(6) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at TIMESTAMPTZ NOT NULL,
		used BOOLEAN NOT NULL DEFAULT false
	);

	CREATE TABLE IF NOT EXISTS patients (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		clinic_id UUID NOT NULL REFERENCES clinics(id),
		primary_branch_id UUID REFERENCES branches(id),
		full_name VARCHAR(255) NOT NULL,
		phone VARCHAR(50) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_clinic ON users(clinic_id) WHERE clinic_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_branches_clinic ON branches(clinic_id);
	CREATE INDEX IF NOT EXISTS idx_director_links_user ON director_links(user_id);
	CREATE INDEX IF NOT EXISTS idx_reset_codes_user ON reset_codes(user_id) WHERE NOT used;
	CREATE INDEX IF NOT EXISTS idx_patients_clinic ON patients(clinic_id);
`

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinic-saas-api/internal/models"
)

// Persistence contracts consumed by the services. The pgx repositories
// implement these; tests substitute in-memory fakes.

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserWriter interface {
	UserStore
	// CreateStaff persists the user and its StaffAssignment (or
	// DirectorLink for clinic_director) in one transaction.
	CreateStaff(ctx context.Context, user *models.User, clinicID uuid.UUID, branchID *uuid.UUID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// UpdatePassword sets a new hash and bumps the user's token version.
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	// SetActive toggles the active flag; deactivation bumps the token
	// version so outstanding sessions die immediately.
	SetActive(ctx context.Context, userID uuid.UUID, active bool) error
	// SoftDelete scrubs email, phone and name, deactivates the account
	// and bumps the token version. The row itself is retained.
	SoftDelete(ctx context.Context, userID uuid.UUID) error
}

type DirectorStore interface {
	ClinicIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CountClinics(ctx context.Context, userID uuid.UUID) (int, error)
}

type AssignmentStore interface {
	// Get returns nil (no error) when the user has no assignment.
	Get(ctx context.Context, userID uuid.UUID) (*models.StaffAssignment, error)
}

type PlanStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Plan, error)
	// GetActiveBySlug returns only active plans.
	GetActiveBySlug(ctx context.Context, slug string) (*models.Plan, error)
}

type SubscriptionStore interface {
	GetByClinic(ctx context.Context, clinicID uuid.UUID) (*models.Subscription, error)
}

// UsageCounter counts currently-active rows of a resource within a clinic.
// Soft-deleted and blocked rows are excluded, so freeing one immediately
// frees one unit of quota.
type UsageCounter interface {
	CountActive(ctx context.Context, clinicID uuid.UUID, resource Resource) (int, error)
}

type ResetCodeStore interface {
	// InvalidateForUser marks every unused code of the user as used.
	InvalidateForUser(ctx context.Context, userID uuid.UUID) error
	Create(ctx context.Context, userID uuid.UUID, code string, expiresAt time.Time) (*models.ResetCode, error)
	// GetValid returns the most recently created code matching (user,
	// code) that is unused and unexpired, or nil.
	GetValid(ctx context.Context, userID uuid.UUID, code string, now time.Time) (*models.ResetCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// ClinicLocker serializes quota check-and-create per clinic. The pgx
// implementation holds a Postgres advisory lock for the duration of fn.
type ClinicLocker interface {
	WithClinicLock(ctx context.Context, clinicID uuid.UUID, fn func(ctx context.Context) error) error
}

// ProvisionParams is the input of the atomic first-clinic provisioning unit.
type ProvisionParams struct {
	Owner      *models.User
	Plan       *models.Plan
	ClinicName string
	LegalName  string
	Address    string
}

// ProvisionResult reports everything created by one activation.
type ProvisionResult struct {
	Clinic       *models.Clinic
	Branch       *models.Branch
	Subscription *models.Subscription
	Owner        *models.User
	ClinicsUsed  int
}

// ProvisioningStore runs the activation unit atomically: under a per-owner
// lock it re-counts the owner's clinics against the plan limit, then
// creates the clinic, subscription, director link and default branch, and
// promotes a pending director. Any failure leaves nothing behind.
type ProvisioningStore interface {
	ProvisionClinic(ctx context.Context, params ProvisionParams) (*ProvisionResult, error)
}

// Notifier is the outbound notification sink. Delivery mechanics live
// behind it; the core only hands over the payload.
type Notifier interface {
	SendPasswordReset(ctx context.Context, user *models.User, code string) error
}

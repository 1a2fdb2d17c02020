package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleSystemAdmin     Role = "system_admin"
	RolePendingDirector Role = "pending_director"
	RoleClinicDirector  Role = "clinic_director"
	RoleClinicAdmin     Role = "clinic_admin"
	RoleDoctor          Role = "doctor"
	RoleReceptionist    Role = "receptionist"
)

// StaffRoles are the roles bound to exactly one branch via a StaffAssignment.
var StaffRoles = []Role{RoleClinicAdmin, RoleDoctor, RoleReceptionist}

func (r Role) Valid() bool {
	switch r {
	case RoleSystemAdmin, RolePendingDirector, RoleClinicDirector,
		RoleClinicAdmin, RoleDoctor, RoleReceptionist:
		return true
	}
	return false
}

func (r Role) IsStaff() bool {
	return r == RoleClinicAdmin || r == RoleDoctor || r == RoleReceptionist
}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	FullName     string     `json:"full_name"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	ClinicID     *uuid.UUID `json:"clinic_id,omitempty"`
	BranchID     *uuid.UUID `json:"branch_id,omitempty"`
	// TokenVersion is embedded in issued tokens and bumped on password
	// reset, block and soft delete, invalidating outstanding sessions.
	TokenVersion int       `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ClinicStatus string

const (
	ClinicStatusActive    ClinicStatus = "active"
	ClinicStatusSuspended ClinicStatus = "suspended"
	ClinicStatusBlocked   ClinicStatus = "blocked"
)

type Clinic struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	LegalName string       `json:"legal_name,omitempty"`
	Status    ClinicStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
}

type Branch struct {
	ID        uuid.UUID `json:"id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// DirectorLink ties a clinic_director to one clinic it controls. A director
// may hold several links; each clinic has exactly one director at a time.
type DirectorLink struct {
	UserID    uuid.UUID `json:"user_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StaffAssignment binds a staff user (clinic_admin, doctor, receptionist)
// to exactly one branch. A staff user without an assignment is unscoped and
// is denied all clinic-scoped actions.
type StaffAssignment struct {
	UserID    uuid.UUID `json:"user_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	BranchID  uuid.UUID `json:"branch_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Plan struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	PriceMonthly  float64   `json:"price_monthly"`
	Currency      string    `json:"currency"`
	LimitUsers    int       `json:"limit_users"`
	LimitBranches int       `json:"limit_branches"`
	LimitClinics  int       `json:"limit_clinics"`
	LimitPatients int       `json:"limit_patients"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SubscriptionStatus string

const (
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusOverdue   SubscriptionStatus = "overdue"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Usable reports whether the subscription entitles the clinic to create
// new resources. Overdue and cancelled subscriptions fail closed.
func (s SubscriptionStatus) Usable() bool {
	return s == SubscriptionStatusTrial || s == SubscriptionStatusActive
}

type Subscription struct {
	ID          uuid.UUID          `json:"id"`
	ClinicID    uuid.UUID          `json:"clinic_id"`
	PlanID      uuid.UUID          `json:"plan_id"`
	Status      SubscriptionStatus `json:"status"`
	PeriodStart time.Time          `json:"period_start"`
	PeriodEnd   time.Time          `json:"period_end"`
	AutoRenew   bool               `json:"auto_renew"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ResetCode is a one-time 6-digit password reset code. At most one valid
// (unused, unexpired) code exists per user: issuing a new one marks all
// earlier unused codes as used.
type ResetCode struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Code      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
}

type Patient struct {
	ID              uuid.UUID  `json:"id"`
	ClinicID        uuid.UUID  `json:"clinic_id"`
	PrimaryBranchID *uuid.UUID `json:"primary_branch_id,omitempty"`
	FullName        string     `json:"full_name"`
	Phone           string     `json:"phone"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

package models

import "github.com/google/uuid"

// DTOs for API requests/responses

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         struct {
		ID       uuid.UUID  `json:"id"`
		Email    string     `json:"email"`
		FullName string     `json:"full_name"`
		Role     Role       `json:"role"`
		ClinicID *uuid.UUID `json:"clinic_id,omitempty"`
		BranchID *uuid.UUID `json:"branch_id,omitempty"`
	} `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required"`
}

type ActivationRequest struct {
	PlanSlug   string `json:"plan_slug" binding:"required"`
	ClinicName string `json:"clinic_name" binding:"required"`
	LegalName  string `json:"legal_name"`
	Address    string `json:"address"`
}

type ActivationResponse struct {
	ClinicID     uuid.UUID `json:"clinic_id"`
	BranchID     uuid.UUID `json:"branch_id"`
	Plan         string    `json:"plan"`
	ClinicsUsed  int       `json:"clinics_used"`
	ClinicsLimit int       `json:"clinics_limit"`
	TrialDays    int       `json:"trial_days"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

type CreatePlanRequest struct {
	Name          string  `json:"name" binding:"required"`
	Slug          string  `json:"slug" binding:"required"`
	PriceMonthly  float64 `json:"price_monthly" binding:"required"`
	Currency      string  `json:"currency"`
	LimitUsers    int     `json:"limit_users"`
	LimitBranches int     `json:"limit_branches"`
	LimitClinics  int     `json:"limit_clinics"`
	LimitPatients int     `json:"limit_patients"`
}

type UpdatePlanRequest struct {
	Name          *string  `json:"name"`
	PriceMonthly  *float64 `json:"price_monthly"`
	LimitUsers    *int     `json:"limit_users"`
	LimitBranches *int     `json:"limit_branches"`
	LimitClinics  *int     `json:"limit_clinics"`
	LimitPatients *int     `json:"limit_patients"`
	IsActive      *bool    `json:"is_active"`
}

type CreateStaffRequest struct {
	Email    string     `json:"email" binding:"required,email"`
	Phone    string     `json:"phone" binding:"required"`
	FullName string     `json:"full_name" binding:"required"`
	Password string     `json:"password" binding:"required,min=8"`
	Role     Role       `json:"role" binding:"required"`
	BranchID *uuid.UUID `json:"branch_id"`
}

type UpdateStaffRequest struct {
	FullName *string    `json:"full_name"`
	Phone    *string    `json:"phone"`
	BranchID *uuid.UUID `json:"branch_id"`
	IsActive *bool      `json:"is_active"`
}

type CreateBranchRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

type CreatePatientRequest struct {
	FullName        string     `json:"full_name" binding:"required"`
	Phone           string     `json:"phone" binding:"required"`
	PrimaryBranchID *uuid.UUID `json:"primary_branch_id"`
}

// BillingWebhookRequest is the payment gateway callback payload.
// State 2 means the transaction was confirmed by the gateway.
type BillingWebhookRequest struct {
	TransactionID  string    `json:"transaction" binding:"required"`
	SubscriptionID uuid.UUID `json:"subscription_id" binding:"required"`
	State          int       `json:"state"`
}

package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a domain error.
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeQuota        ErrorType = "quota"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError is a typed error carried across component boundaries instead
// of raw persistence failures.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on error type so sentinel values survive WithDetail copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithDetail returns a copy of the error with an attached detail, leaving
// the sentinel itself untouched.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &DomainError{Type: e.Type, Message: e.Message, Err: e.Err, Details: details}
}

func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{Type: errType, Message: message, Err: err}
}

var (
	// Authentication. All of these surface to clients as a generic
	// "not authorized" so the failing check is never leaked.
	ErrInvalidCredentials = NewDomainError(ErrorTypeUnauthorized, "invalid credentials", nil)
	ErrInvalidToken       = NewDomainError(ErrorTypeUnauthorized, "invalid or expired token", nil)

	// Authorization.
	ErrNotOwnerOrMember = NewDomainError(ErrorTypeForbidden, "not_owner_or_member", nil)
	ErrForbidden        = NewDomainError(ErrorTypeForbidden, "access forbidden", nil)

	// Quota. Denials carry "current" and "limit" details for display.
	ErrNoActivePlan       = NewDomainError(ErrorTypeQuota, "no_active_plan", nil)
	ErrQuotaExceeded      = NewDomainError(ErrorTypeQuota, "quota_exceeded", nil)
	ErrClinicLimitReached = NewDomainError(ErrorTypeQuota, "tenant_limit_reached", nil)

	// Not found.
	ErrUserNotFound   = NewDomainError(ErrorTypeNotFound, "user not found", nil)
	ErrClinicNotFound = NewDomainError(ErrorTypeNotFound, "clinic not found", nil)
	ErrBranchNotFound = NewDomainError(ErrorTypeNotFound, "branch not found", nil)
	ErrPlanNotFound   = NewDomainError(ErrorTypeNotFound, "plan_not_found", nil)
	ErrSubNotFound    = NewDomainError(ErrorTypeNotFound, "subscription not found", nil)

	// Conflict.
	ErrDuplicateEmail = NewDomainError(ErrorTypeConflict, "email already in use", nil)
	ErrDuplicateSlug  = NewDomainError(ErrorTypeConflict, "plan slug already in use", nil)

	// Validation.
	ErrWeakPassword     = NewDomainError(ErrorTypeValidation, "weak_secret", nil)
	ErrInvalidResetCode = NewDomainError(ErrorTypeValidation, "invalid_or_expired_code", nil)
	ErrInvalidRole      = NewDomainError(ErrorTypeValidation, "invalid role", nil)

	ErrInternal = NewDomainError(ErrorTypeInternal, "internal error", nil)
)

// GetErrorType returns the ErrorType of a domain error, or empty string.
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil.
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps a persistence or infrastructure failure so it is never
// exposed verbatim to clients.
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

func IsQuotaError(err error) bool {
	return GetErrorType(err) == ErrorTypeQuota
}

func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

// Resource is a quota-limited resource class.
type Resource string

const (
	ResourceUsers    Resource = "users"
	ResourceBranches Resource = "branches"
	ResourcePatients Resource = "patients"
	// ResourceClinics is counted per owner, not per clinic: the limit is
	// "clinics per director".
	ResourceClinics Resource = "clinics"
)

// QuotaService checks current usage against the clinic's plan ceilings
// before a new resource is created. The comparison itself is advisory;
// callers serialize check-and-create through a ClinicLocker.
type QuotaService struct {
	subscriptions SubscriptionStore
	plans         PlanStore
	usage         UsageCounter
	logger        *zap.Logger
}

func NewQuotaService(subscriptions SubscriptionStore, plans PlanStore, usage UsageCounter, logger *zap.Logger) *QuotaService {
	return &QuotaService{
		subscriptions: subscriptions,
		plans:         plans,
		usage:         usage,
		logger:        logger,
	}
}

func limitFor(plan *models.Plan, resource Resource) int {
	switch resource {
	case ResourceUsers:
		return plan.LimitUsers
	case ResourceBranches:
		return plan.LimitBranches
	case ResourcePatients:
		return plan.LimitPatients
	case ResourceClinics:
		return plan.LimitClinics
	}
	return 0
}

// Reserve grants one unit of the resource for the clinic, or fails with
// the current count and limit. A clinic without a usable subscription
// fails closed. Counts run over currently-active rows only, so a soft
// delete immediately frees a unit.
func (s *QuotaService) Reserve(ctx context.Context, clinicID uuid.UUID, resource Resource) error {
	sub, err := s.subscriptions.GetByClinic(ctx, clinicID)
	if err != nil {
		return WrapInternal("failed to load subscription", err)
	}
	if sub == nil || !sub.Status.Usable() {
		return ErrNoActivePlan
	}

	plan, err := s.plans.GetByID(ctx, sub.PlanID)
	if err != nil || plan == nil {
		return ErrNoActivePlan
	}

	current, err := s.usage.CountActive(ctx, clinicID, resource)
	if err != nil {
		return WrapInternal("failed to count usage", err)
	}

	limit := limitFor(plan, resource)
	if current >= limit {
		s.logger.Info("quota reservation denied",
			zap.String("clinic_id", clinicID.String()),
			zap.String("resource", string(resource)),
			zap.Int("current", current),
			zap.Int("limit", limit))
		return ErrQuotaExceeded.
			WithDetail("resource", string(resource)).
			WithDetail("current", current).
			WithDetail("limit", limit)
	}

	return nil
}

// ReserveClinic applies the per-director clinic ceiling. Plan updates are
// not retroactive: an already-over-limit director is only refused at the
// next creation attempt.
func (s *QuotaService) ReserveClinic(ctx context.Context, directors DirectorStore, ownerID uuid.UUID, plan *models.Plan) error {
	current, err := directors.CountClinics(ctx, ownerID)
	if err != nil {
		return WrapInternal("failed to count clinics", err)
	}

	if current >= plan.LimitClinics {
		return ErrClinicLimitReached.
			WithDetail("current", current).
			WithDetail("limit", plan.LimitClinics)
	}

	return nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

const trialDays = 30

// ActivationService turns a pending director into a clinic director, and
// lets an existing director add another clinic within the plan ceiling.
type ActivationService struct {
	plans     PlanStore
	directors DirectorStore
	quota     *QuotaService
	store     ProvisioningStore
	tokens    *TokenService
	logger    *zap.Logger
}

func NewActivationService(plans PlanStore, directors DirectorStore, quota *QuotaService, store ProvisioningStore, tokens *TokenService, logger *zap.Logger) *ActivationService {
	return &ActivationService{
		plans:     plans,
		directors: directors,
		quota:     quota,
		store:     store,
		tokens:    tokens,
		logger:    logger,
	}
}

// Activate provisions one clinic with its trial subscription, director
// link and default branch as a single atomic unit, then issues a token
// pair reflecting the possibly promoted role. A failure anywhere leaves
// no partial clinic behind.
func (s *ActivationService) Activate(ctx context.Context, user *models.User, req models.ActivationRequest) (*models.ActivationResponse, error) {
	if user.Role != models.RolePendingDirector && user.Role != models.RoleClinicDirector {
		return nil, ErrForbidden
	}

	plan, err := s.plans.GetActiveBySlug(ctx, req.PlanSlug)
	if err != nil {
		return nil, WrapInternal("failed to load plan", err)
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	// Fast ceiling check before provisioning; the store repeats it under
	// the per-owner lock, which is the authoritative one.
	if err := s.quota.ReserveClinic(ctx, s.directors, user.ID, plan); err != nil {
		return nil, err
	}

	legalName := req.LegalName
	if legalName == "" {
		legalName = req.ClinicName
	}

	// The store re-checks the clinic ceiling under a per-owner lock, so
	// two concurrent activations cannot overshoot the plan limit.
	result, err := s.store.ProvisionClinic(ctx, ProvisionParams{
		Owner:      user,
		Plan:       plan,
		ClinicName: req.ClinicName,
		LegalName:  legalName,
		Address:    req.Address,
	})
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(result.Owner)
	if err != nil {
		return nil, err
	}

	s.logger.Info("clinic activated",
		zap.String("user_id", result.Owner.ID.String()),
		zap.String("clinic_id", result.Clinic.ID.String()),
		zap.String("plan", plan.Slug))

	return &models.ActivationResponse{
		ClinicID:     result.Clinic.ID,
		BranchID:     result.Branch.ID,
		Plan:         plan.Name,
		ClinicsUsed:  result.ClinicsUsed,
		ClinicsLimit: plan.LimitClinics,
		TrialDays:    trialDays,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

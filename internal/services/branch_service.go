package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

type BranchWriter interface {
	BranchStore
	Create(ctx context.Context, clinicID uuid.UUID, req models.CreateBranchRequest) (*models.Branch, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Branch, error)
	SetActive(ctx context.Context, branchID uuid.UUID, active bool) error
}

// BranchService manages clinic branches. Creation is gated by the
// branches quota under the clinic lock.
type BranchService struct {
	store  BranchWriter
	quota  *QuotaService
	locker ClinicLocker
	logger *zap.Logger
}

func NewBranchService(store BranchWriter, quota *QuotaService, locker ClinicLocker, logger *zap.Logger) *BranchService {
	return &BranchService{store: store, quota: quota, locker: locker, logger: logger}
}

func (s *BranchService) Create(ctx context.Context, clinicID uuid.UUID, req models.CreateBranchRequest) (*models.Branch, error) {
	var created *models.Branch
	err := s.locker.WithClinicLock(ctx, clinicID, func(ctx context.Context) error {
		if err := s.quota.Reserve(ctx, clinicID, ResourceBranches); err != nil {
			return err
		}
		var err error
		created, err = s.store.Create(ctx, clinicID, req)
		if err != nil {
			return WrapInternal("failed to create branch", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("branch created",
		zap.String("branch_id", created.ID.String()),
		zap.String("clinic_id", clinicID.String()))
	return created, nil
}

func (s *BranchService) List(ctx context.Context, clinicID uuid.UUID) ([]models.Branch, error) {
	branches, err := s.store.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, WrapInternal("failed to list branches", err)
	}
	return branches, nil
}

// Deactivate soft-removes a branch, immediately freeing a quota unit
func (s *BranchService) Deactivate(ctx context.Context, clinicID, branchID uuid.UUID) error {
	branch, err := s.store.GetByID(ctx, branchID)
	if err != nil {
		return WrapInternal("failed to load branch", err)
	}
	if branch == nil || branch.ClinicID != clinicID {
		return ErrBranchNotFound
	}
	if err := s.store.SetActive(ctx, branchID, false); err != nil {
		return WrapInternal("failed to deactivate branch", err)
	}
	return nil
}

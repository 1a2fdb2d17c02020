package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
	"github.com/clinic-saas-api/internal/utils"
)

type BranchStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Branch, error)
}

// StaffService manages clinic staff accounts: creation gated by the users
// quota, profile assignment in the same transaction, block/unblock and
// soft delete.
type StaffService struct {
	users    UserWriter
	branches BranchStore
	quota    *QuotaService
	locker   ClinicLocker
	logger   *zap.Logger
}

func NewStaffService(users UserWriter, branches BranchStore, quota *QuotaService, locker ClinicLocker, logger *zap.Logger) *StaffService {
	return &StaffService{
		users:    users,
		branches: branches,
		quota:    quota,
		locker:   locker,
		logger:   logger,
	}
}

// Create persists a staff user and its branch assignment. The quota check
// and the insert run under the clinic lock, so concurrent creations
// cannot overshoot the plan's user ceiling. Without a branch the staff
// user is left unscoped and will be denied until one is assigned.
func (s *StaffService) Create(ctx context.Context, clinicID uuid.UUID, req models.CreateStaffRequest) (*models.User, error) {
	if !req.Role.IsStaff() {
		return nil, ErrInvalidRole
	}

	email := utils.NormalizeEmail(req.Email)
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, WrapInternal("failed to check email", err)
	} else if existing != nil {
		return nil, ErrDuplicateEmail
	}

	if req.BranchID != nil {
		branch, err := s.branches.GetByID(ctx, *req.BranchID)
		if err != nil {
			return nil, WrapInternal("failed to load branch", err)
		}
		if branch == nil || branch.ClinicID != clinicID {
			return nil, ErrBranchNotFound
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		Phone:        req.Phone,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
		ClinicID:     &clinicID,
		BranchID:     req.BranchID,
		IsActive:     true,
	}

	var created *models.User
	err = s.locker.WithClinicLock(ctx, clinicID, func(ctx context.Context) error {
		if err := s.quota.Reserve(ctx, clinicID, ResourceUsers); err != nil {
			return err
		}
		created, err = s.users.CreateStaff(ctx, user, clinicID, req.BranchID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("staff user created",
		zap.String("user_id", created.ID.String()),
		zap.String("clinic_id", clinicID.String()),
		zap.String("role", string(created.Role)))

	return created, nil
}

// Update applies field changes. Re-activating a blocked user counts as a
// new unit of the users quota and is re-checked under the clinic lock.
func (s *StaffService) Update(ctx context.Context, clinicID, userID uuid.UUID, req models.UpdateStaffRequest) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, WrapInternal("failed to load user", err)
	}
	if user == nil || user.ClinicID == nil || *user.ClinicID != clinicID {
		return nil, ErrUserNotFound
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.BranchID != nil {
		branch, err := s.branches.GetByID(ctx, *req.BranchID)
		if err != nil {
			return nil, WrapInternal("failed to load branch", err)
		}
		if branch == nil || branch.ClinicID != clinicID {
			return nil, ErrBranchNotFound
		}
		user.BranchID = req.BranchID
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, WrapInternal("failed to update user", err)
	}

	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if *req.IsActive {
			err = s.locker.WithClinicLock(ctx, clinicID, func(ctx context.Context) error {
				if err := s.quota.Reserve(ctx, clinicID, ResourceUsers); err != nil {
					return err
				}
				return s.users.SetActive(ctx, userID, true)
			})
		} else {
			err = s.users.SetActive(ctx, userID, false)
		}
		if err != nil {
			return nil, err
		}
		user.IsActive = *req.IsActive
	}

	return user, nil
}

// Delete soft-deletes the user: identity fields are scrubbed, the account
// is deactivated and its sessions are invalidated. The row is retained for
// referential integrity and the freed quota unit is available immediately.
func (s *StaffService) Delete(ctx context.Context, caller *models.User, clinicID, userID uuid.UUID) error {
	if caller.ID == userID {
		return ErrForbidden
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return WrapInternal("failed to load user", err)
	}
	if user == nil || user.ClinicID == nil || *user.ClinicID != clinicID {
		return ErrUserNotFound
	}

	if err := s.users.SoftDelete(ctx, userID); err != nil {
		return WrapInternal("failed to delete user", err)
	}

	s.logger.Info("staff user soft-deleted",
		zap.String("user_id", userID.String()),
		zap.String("clinic_id", clinicID.String()))

	return nil
}

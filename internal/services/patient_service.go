package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

type PatientWriter interface {
	Create(ctx context.Context, clinicID uuid.UUID, req models.CreatePatientRequest) (*models.Patient, error)
	GetByID(ctx context.Context, patientID uuid.UUID) (*models.Patient, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Patient, error)
	Deactivate(ctx context.Context, patientID uuid.UUID) error
}

// PatientService manages patient records. Creation is gated by the
// patients quota under the clinic lock; deactivation frees a unit.
type PatientService struct {
	store    PatientWriter
	branches BranchStore
	quota    *QuotaService
	locker   ClinicLocker
	logger   *zap.Logger
}

func NewPatientService(store PatientWriter, branches BranchStore, quota *QuotaService, locker ClinicLocker, logger *zap.Logger) *PatientService {
	return &PatientService{store: store, branches: branches, quota: quota, locker: locker, logger: logger}
}

func (s *PatientService) Create(ctx context.Context, clinicID uuid.UUID, req models.CreatePatientRequest) (*models.Patient, error) {
	if req.PrimaryBranchID != nil {
		branch, err := s.branches.GetByID(ctx, *req.PrimaryBranchID)
		if err != nil {
			return nil, WrapInternal("failed to load branch", err)
		}
		if branch == nil || branch.ClinicID != clinicID {
			return nil, ErrBranchNotFound
		}
	}

	var created *models.Patient
	err := s.locker.WithClinicLock(ctx, clinicID, func(ctx context.Context) error {
		if err := s.quota.Reserve(ctx, clinicID, ResourcePatients); err != nil {
			return err
		}
		var err error
		created, err = s.store.Create(ctx, clinicID, req)
		if err != nil {
			return WrapInternal("failed to create patient", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("patient created",
		zap.String("patient_id", created.ID.String()),
		zap.String("clinic_id", clinicID.String()))
	return created, nil
}

func (s *PatientService) List(ctx context.Context, clinicID uuid.UUID) ([]models.Patient, error) {
	patients, err := s.store.ListByClinic(ctx, clinicID)
	if err != nil {
		return nil, WrapInternal("failed to list patients", err)
	}
	return patients, nil
}

func (s *PatientService) Deactivate(ctx context.Context, clinicID, patientID uuid.UUID) error {
	patient, err := s.store.GetByID(ctx, patientID)
	if err != nil {
		return WrapInternal("failed to load patient", err)
	}
	if patient == nil || patient.ClinicID != clinicID {
		return NewDomainError(ErrorTypeNotFound, "patient not found", nil)
	}
	if err := s.store.Deactivate(ctx, patientID); err != nil {
		return WrapInternal("failed to deactivate patient", err)
	}
	return nil
}

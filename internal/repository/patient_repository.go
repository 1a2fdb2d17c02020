package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic-saas-api/internal/models"
)

type PatientRepository struct {
	pool *pgxpool.Pool
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{pool: pool}
}

const patientColumns = `id, clinic_id, primary_branch_id, full_name, phone, is_active, created_at`

func scanPatient(row pgx.Row) (*models.Patient, error) {
	p := &models.Patient{}
	err := row.Scan(&p.ID, &p.ClinicID, &p.PrimaryBranchID, &p.FullName, &p.Phone, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create persists a new patient record
func (r *PatientRepository) Create(ctx context.Context, clinicID uuid.UUID, req models.CreatePatientRequest) (*models.Patient, error) {
	query := fmt.Sprintf(`
		INSERT INTO patients (clinic_id, primary_branch_id, full_name, phone, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING %s
	`, patientColumns)

	patient, err := scanPatient(r.pool.QueryRow(ctx, query,
		clinicID, req.PrimaryBranchID, req.FullName, req.Phone))
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

// GetByID retrieves a patient by ID; returns nil when absent
func (r *PatientRepository) GetByID(ctx context.Context, patientID uuid.UUID) (*models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE id = $1`, patientColumns)

	patient, err := scanPatient(r.pool.QueryRow(ctx, query, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return patient, nil
}

// ListByClinic returns the clinic's active patients
func (r *PatientRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]models.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE clinic_id = $1 AND is_active = true ORDER BY full_name`, patientColumns)

	rows, err := r.pool.Query(ctx, query, clinicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan patient: %w", err)
		}
		patients = append(patients, *patient)
	}
	return patients, rows.Err()
}

// Deactivate soft-removes a patient, freeing one unit of the patients quota
func (r *PatientRepository) Deactivate(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE patients SET is_active = false WHERE id = $1`, patientID)
	if err != nil {
		return fmt.Errorf("failed to deactivate patient: %w", err)
	}
	return nil
}

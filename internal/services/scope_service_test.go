package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-saas-api/internal/models"
)

func TestScopeServiceAuthorize(t *testing.T) {
	clinicA := uuid.New()
	clinicB := uuid.New()
	branchA := uuid.New()

	sysAdmin := &models.User{ID: uuid.New(), Role: models.RoleSystemAdmin}
	director := &models.User{ID: uuid.New(), Role: models.RoleClinicDirector}
	emptyDirector := &models.User{ID: uuid.New(), Role: models.RoleClinicDirector}
	admin := &models.User{ID: uuid.New(), Role: models.RoleClinicAdmin}
	unassigned := &models.User{ID: uuid.New(), Role: models.RoleDoctor}
	pending := &models.User{ID: uuid.New(), Role: models.RolePendingDirector}

	svc := NewScopeService(
		&fakeDirectorStore{clinics: map[uuid.UUID][]uuid.UUID{
			director.ID: {clinicA},
		}},
		&fakeAssignmentStore{assignments: map[uuid.UUID]*models.StaffAssignment{
			admin.ID: {UserID: admin.ID, ClinicID: clinicA, BranchID: branchA},
		}},
	)

	tests := []struct {
		name     string
		user     *models.User
		clinicID uuid.UUID
		allowed  bool
	}{
		{"system admin any clinic", sysAdmin, clinicA, true},
		{"system admin other clinic", sysAdmin, clinicB, true},
		{"director own clinic", director, clinicA, true},
		{"director foreign clinic", director, clinicB, false},
		{"director without clinics", emptyDirector, clinicA, false},
		{"clinic admin own clinic", admin, clinicA, true},
		{"clinic admin foreign clinic", admin, clinicB, false},
		{"staff without assignment", unassigned, clinicA, false},
		{"pending director", pending, clinicA, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authorize(context.Background(), tt.user, tt.clinicID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotOwnerOrMember)
			}
		})
	}
}

func TestScopeOfDirectorSeveralClinics(t *testing.T) {
	clinicA := uuid.New()
	clinicB := uuid.New()
	director := &models.User{ID: uuid.New(), Role: models.RoleClinicDirector}

	svc := NewScopeService(
		&fakeDirectorStore{clinics: map[uuid.UUID][]uuid.UUID{
			director.ID: {clinicA, clinicB},
		}},
		&fakeAssignmentStore{assignments: map[uuid.UUID]*models.StaffAssignment{}},
	)

	scope, err := svc.ScopeOf(context.Background(), director)
	require.NoError(t, err)
	assert.Equal(t, ScopeClinics, scope.Kind)
	assert.True(t, scope.Covers(clinicA))
	assert.True(t, scope.Covers(clinicB))
	assert.False(t, scope.Covers(uuid.New()))
}

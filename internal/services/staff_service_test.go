package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinic-saas-api/internal/models"
)

type staffFixture struct {
	svc      *StaffService
	users    *fakeUserStore
	usage    *fakeUsageCounter
	branches *fakeBranchStore
	quota    *QuotaService
	clinicID uuid.UUID
	branchID uuid.UUID
}

func newStaffFixture(t *testing.T, limitUsers int) *staffFixture {
	t.Helper()

	clinicID := uuid.New()
	branchID := uuid.New()

	plan := &models.Plan{ID: uuid.New(), Slug: "basic", LimitUsers: limitUsers, IsActive: true}
	plans := newFakePlanStore(plan)
	subs := &fakeSubscriptionStore{subs: map[uuid.UUID]*models.Subscription{
		clinicID: {
			ID:        uuid.New(),
			ClinicID:  clinicID,
			PlanID:    plan.ID,
			Status:    models.SubscriptionStatusActive,
			PeriodEnd: time.Now().Add(24 * time.Hour),
		},
	}}
	usage := newFakeUsageCounter()
	quota := NewQuotaService(subs, plans, usage, zap.NewNop())

	users := newFakeUserStore()
	branches := &fakeBranchStore{branches: map[uuid.UUID]*models.Branch{
		branchID: {ID: branchID, ClinicID: clinicID, Name: "Main branch", IsActive: true},
	}}

	svc := NewStaffService(users, branches, quota, &fakeLocker{}, zap.NewNop())
	return &staffFixture{
		svc:      svc,
		users:    users,
		usage:    usage,
		branches: branches,
		quota:    quota,
		clinicID: clinicID,
		branchID: branchID,
	}
}

func createStaffRequest(branchID *uuid.UUID) models.CreateStaffRequest {
	return models.CreateStaffRequest{
		Email:    "doctor@example.com",
		Phone:    "+998901234567",
		FullName: "Dr. Test",
		Password: "secure-password",
		Role:     models.RoleDoctor,
		BranchID: branchID,
	}
}

func TestStaffCreate(t *testing.T) {
	f := newStaffFixture(t, 10)

	user, err := f.svc.Create(context.Background(), f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	assert.Equal(t, models.RoleDoctor, user.Role)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.ClinicID)
	assert.Equal(t, f.clinicID, *user.ClinicID)
	require.NotNil(t, user.BranchID)
	assert.Equal(t, f.branchID, *user.BranchID)
	assert.NotEqual(t, "secure-password", user.PasswordHash)
}

func TestStaffCreateRejectsNonStaffRole(t *testing.T) {
	f := newStaffFixture(t, 10)

	req := createStaffRequest(&f.branchID)
	req.Role = models.RoleSystemAdmin

	_, err := f.svc.Create(context.Background(), f.clinicID, req)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestStaffCreateRejectsDuplicateEmail(t *testing.T) {
	f := newStaffFixture(t, 10)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// blindUserStore hides existing users from the email pre-check so the
// insert itself hits the unique index, as in a concurrent registration.
type blindUserStore struct {
	*fakeUserStore
}

func (s *blindUserStore) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func TestStaffCreateDuplicateRaceSurfacesConflict(t *testing.T) {
	f := newStaffFixture(t, 10)

	existing := activeUser()
	existing.Email = "doctor@example.com"
	f.users.users[existing.ID] = existing

	svc := NewStaffService(&blindUserStore{f.users}, f.branches, f.quota, &fakeLocker{}, zap.NewNop())

	_, err := svc.Create(context.Background(), f.clinicID, createStaffRequest(&f.branchID))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestStaffCreateRejectsForeignBranch(t *testing.T) {
	f := newStaffFixture(t, 10)

	foreign := uuid.New()
	_, err := f.svc.Create(context.Background(), f.clinicID, createStaffRequest(&foreign))
	assert.ErrorIs(t, err, ErrBranchNotFound)
}

func TestStaffCreateDeniedAtQuota(t *testing.T) {
	f := newStaffFixture(t, 3)
	f.usage.set(ResourceUsers, 3)

	_, err := f.svc.Create(context.Background(), f.clinicID, createStaffRequest(&f.branchID))
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 3, GetErrorDetails(err)["limit"])
}

func TestStaffDeleteScrubsIdentity(t *testing.T) {
	f := newStaffFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	caller := &models.User{ID: uuid.New(), Role: models.RoleClinicDirector}
	require.NoError(t, f.svc.Delete(ctx, caller, f.clinicID, created.ID))

	stored, err := f.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.True(t, strings.HasPrefix(stored.Email, "deleted_"))
	assert.Empty(t, stored.Phone)
	assert.NotEqual(t, "Dr. Test", stored.FullName)
	assert.Greater(t, stored.TokenVersion, created.TokenVersion)
}

func TestStaffDeleteRejectsSelf(t *testing.T) {
	f := newStaffFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, created, f.clinicID, created.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStaffDeleteRejectsForeignClinic(t *testing.T) {
	f := newStaffFixture(t, 10)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	caller := &models.User{ID: uuid.New(), Role: models.RoleClinicDirector}
	err = f.svc.Delete(ctx, caller, uuid.New(), created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestStaffUpdateReactivationChecksQuota(t *testing.T) {
	f := newStaffFixture(t, 3)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.clinicID, createStaffRequest(&f.branchID))
	require.NoError(t, err)

	inactive := false
	_, err = f.svc.Update(ctx, f.clinicID, created.ID, models.UpdateStaffRequest{IsActive: &inactive})
	require.NoError(t, err)

	// The clinic filled up while the user was blocked.
	f.usage.set(ResourceUsers, 3)

	active := true
	_, err = f.svc.Update(ctx, f.clinicID, created.ID, models.UpdateStaffRequest{IsActive: &active})
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

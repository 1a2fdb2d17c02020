package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinic-saas-api/internal/models"
)

// In-memory store fakes backing the service tests.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) CreateStaff(_ context.Context, user *models.User, clinicID uuid.UUID, branchID *uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Mirrors the unique index on email.
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateEmail
		}
	}
	created := *user
	created.ID = uuid.New()
	created.ClinicID = &clinicID
	created.BranchID = branchID
	s.users[created.ID] = &created
	copied := created
	return &copied, nil
}

func (s *fakeUserStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.users[user.ID]; ok {
		stored.FullName = user.FullName
		stored.Phone = user.Phone
		stored.BranchID = user.BranchID
	}
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.PasswordHash = passwordHash
		u.TokenVersion++
	}
	return nil
}

func (s *fakeUserStore) SetActive(_ context.Context, userID uuid.UUID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.IsActive = active
		if !active {
			u.TokenVersion++
		}
	}
	return nil
}

func (s *fakeUserStore) SoftDelete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.Email = fmt.Sprintf("deleted_%s@deleted.local", u.ID)
		u.Phone = ""
		u.FullName = "Deleted user"
		u.IsActive = false
		u.TokenVersion++
	}
	return nil
}

type fakeDirectorStore struct {
	clinics map[uuid.UUID][]uuid.UUID
}

func (s *fakeDirectorStore) ClinicIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.clinics[userID], nil
}

func (s *fakeDirectorStore) CountClinics(_ context.Context, userID uuid.UUID) (int, error) {
	return len(s.clinics[userID]), nil
}

type fakeAssignmentStore struct {
	assignments map[uuid.UUID]*models.StaffAssignment
}

func (s *fakeAssignmentStore) Get(_ context.Context, userID uuid.UUID) (*models.StaffAssignment, error) {
	return s.assignments[userID], nil
}

type fakePlanStore struct {
	plans map[uuid.UUID]*models.Plan
}

func newFakePlanStore(plans ...*models.Plan) *fakePlanStore {
	s := &fakePlanStore{plans: make(map[uuid.UUID]*models.Plan)}
	for _, p := range plans {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		s.plans[p.ID] = p
	}
	return s
}

func (s *fakePlanStore) GetByID(_ context.Context, id uuid.UUID) (*models.Plan, error) {
	return s.plans[id], nil
}

func (s *fakePlanStore) GetActiveBySlug(_ context.Context, slug string) (*models.Plan, error) {
	for _, p := range s.plans {
		if p.Slug == slug && p.IsActive {
			return p, nil
		}
	}
	return nil, nil
}

type fakeSubscriptionStore struct {
	subs map[uuid.UUID]*models.Subscription
}

func (s *fakeSubscriptionStore) GetByClinic(_ context.Context, clinicID uuid.UUID) (*models.Subscription, error) {
	return s.subs[clinicID], nil
}

type fakeUsageCounter struct {
	mu     sync.Mutex
	counts map[Resource]int
}

func newFakeUsageCounter() *fakeUsageCounter {
	return &fakeUsageCounter{counts: make(map[Resource]int)}
}

func (s *fakeUsageCounter) CountActive(_ context.Context, _ uuid.UUID, resource Resource) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[resource], nil
}

func (s *fakeUsageCounter) set(resource Resource, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[resource] = n
}

type fakeResetCodeStore struct {
	mu    sync.Mutex
	codes []*models.ResetCode
}

func (s *fakeResetCodeStore) InvalidateForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.UserID == userID {
			c.Used = true
		}
	}
	return nil
}

func (s *fakeResetCodeStore) Create(_ context.Context, userID uuid.UUID, code string, expiresAt time.Time) (*models.ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc := &models.ResetCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      code,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	s.codes = append(s.codes, rc)
	return rc, nil
}

func (s *fakeResetCodeStore) GetValid(_ context.Context, userID uuid.UUID, code string, now time.Time) (*models.ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.ResetCode
	for _, c := range s.codes {
		if c.UserID == userID && c.Code == code && !c.Used && !c.ExpiresAt.Before(now) {
			if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
				latest = c
			}
		}
	}
	return latest, nil
}

func (s *fakeResetCodeStore) MarkUsed(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.codes {
		if c.ID == id {
			c.Used = true
		}
	}
	return nil
}

// fakeLocker serializes sections with a plain mutex, mirroring what the
// advisory lock does in Postgres.
type fakeLocker struct {
	mu sync.Mutex
}

func (l *fakeLocker) WithClinicLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(ctx)
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []string
	codes []string
	err   error
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, user *models.User, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, user.Email)
	n.codes = append(n.codes, code)
	return nil
}

type fakeBranchStore struct {
	branches map[uuid.UUID]*models.Branch
}

func (s *fakeBranchStore) GetByID(_ context.Context, id uuid.UUID) (*models.Branch, error) {
	return s.branches[id], nil
}

// fakeProvisioner mimics the atomic activation unit: it re-checks the
// per-owner ceiling under its own lock and either creates everything or
// nothing.
type fakeProvisioner struct {
	mu    sync.Mutex
	users *fakeUserStore
	owned map[uuid.UUID]int
}

func newFakeProvisioner(users *fakeUserStore) *fakeProvisioner {
	return &fakeProvisioner{users: users, owned: make(map[uuid.UUID]int)}
}

func (p *fakeProvisioner) ClinicIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]uuid.UUID, p.owned[userID])
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids, nil
}

func (p *fakeProvisioner) CountClinics(_ context.Context, userID uuid.UUID) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.owned[userID], nil
}

func (p *fakeProvisioner) ProvisionClinic(ctx context.Context, params ProvisionParams) (*ProvisionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	used := p.owned[params.Owner.ID]
	if used >= params.Plan.LimitClinics {
		return nil, ErrClinicLimitReached.
			WithDetail("current", used).
			WithDetail("limit", params.Plan.LimitClinics)
	}
	p.owned[params.Owner.ID] = used + 1

	clinic := &models.Clinic{ID: uuid.New(), Name: params.ClinicName, LegalName: params.LegalName, Status: models.ClinicStatusActive}
	branch := &models.Branch{
		ID:       uuid.New(),
		ClinicID: clinic.ID,
		Name:     "Main branch",
		Address:  params.Address,
		Phone:    params.Owner.Phone,
		Email:    params.Owner.Email,
		IsActive: true,
	}
	sub := &models.Subscription{
		ID:       uuid.New(),
		ClinicID: clinic.ID,
		PlanID:   params.Plan.ID,
		Status:   models.SubscriptionStatusTrial,
	}

	p.users.mu.Lock()
	owner := p.users.users[params.Owner.ID]
	owner.Role = models.RoleClinicDirector
	if owner.ClinicID == nil {
		id := clinic.ID
		owner.ClinicID = &id
	}
	if owner.BranchID == nil {
		id := branch.ID
		owner.BranchID = &id
	}
	promoted := *owner
	p.users.mu.Unlock()

	return &ProvisionResult{
		Clinic:       clinic,
		Branch:       branch,
		Subscription: sub,
		Owner:        &promoted,
		ClinicsUsed:  used + 1,
	}, nil
}

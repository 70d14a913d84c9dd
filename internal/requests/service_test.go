package requests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

type mockRepository struct {
	requests map[string]*DocumentRequest
	seq      int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{requests: make(map[string]*DocumentRequest)}
}

func (m *mockRepository) Get(ctx context.Context, id string) (*DocumentRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListRequestsRequest) ([]DocumentRequest, int, error) {
	var out []DocumentRequest
	for _, r := range m.requests {
		if req.PersonID != nil && r.PersonID != *req.PersonID {
			continue
		}
		if req.Status != nil && r.Status != *req.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockRepository) Create(ctx context.Context, r DocumentRequest) error {
	cp := r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, r DocumentRequest) error {
	if _, ok := m.requests[r.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRepository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	if m.seq > 0 {
		return m.seq, nil
	}
	return int64(len(m.requests)), nil
}

type mockPersons struct {
	persons map[string]*residents.Person
}

func (m *mockPersons) Get(ctx context.Context, id string) (*residents.Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func clerkActor() shared.Actor {
	return shared.Actor{AccountID: 7, Username: "clerk.reyes", Role: roles.RoleClerk, Active: true}
}

func residentActor(personID string) shared.Actor {
	return shared.Actor{AccountID: 21, Username: "juan.delacruz", Role: roles.RoleResident, PersonID: &personID, Active: true}
}

func newTestService(repo *mockRepository, persons *mockPersons) *Service {
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	alloc := sequence.NewAllocator(repo).WithClock(clock)
	return NewService(repo, persons, alloc, nil, nil).WithClock(clock)
}

func seedPerson(id string, active bool) *mockPersons {
	return &mockPersons{persons: map[string]*residents.Person{
		id: {ID: id, FirstName: "Juan", LastName: "Dela Cruz", IsActive: active},
	}}
}

func TestSubmitAllocatesReference(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{
		Kind:    "BARANGAY_CLEARANCE",
		Purpose: "employment requirement",
	})
	require.NoError(t, err)
	assert.Equal(t, "DR-2025-0000000001", r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, "BR-2025-0000000001", r.PersonID)
}

func TestSubmitRequiresLinkedResident(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	_, err := svc.Submit(context.Background(), clerkActor(), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	unlinked := shared.Actor{AccountID: 22, Username: "maria.santos", Role: roles.RoleResident, Active: true}
	_, err = svc.Submit(context.Background(), unlinked, SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestSubmitRejectsInactiveResident(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", false))

	_, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestTransitionWalkthrough(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "CERT_RESIDENCY", Purpose: "scholarship"})
	require.NoError(t, err)

	r, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusUnderReview, "")
	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, r.Status)

	r, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusApproved, "records verified")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, r.Status)
	require.NotNil(t, r.StaffNotes)
	assert.Equal(t, "records verified", *r.StaffNotes)
}

func TestTransitionStaffOnly(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), residentActor("BR-2025-0000000001"), r.ID, StatusUnderReview, "")
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTransitionIllegalMoveLeavesRequestUnchanged(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusApproved, "")
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	stored, err := repo.Get(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestTransitionCannotIssueDirectly(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusUnderReview, "")
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusApproved, "")
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), clerkActor(), r.ID, StatusIssued, "")
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestGetScopesResidentsToOwnRequests(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo, seedPerson("BR-2025-0000000001", true))

	r, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), residentActor("BR-2025-0000000002"), r.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	got, err := svc.Get(context.Background(), residentActor("BR-2025-0000000001"), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	got, err = svc.Get(context.Background(), clerkActor(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
}

func TestListScopesResidents(t *testing.T) {
	repo := newMockRepository()
	persons := &mockPersons{persons: map[string]*residents.Person{
		"BR-2025-0000000001": {ID: "BR-2025-0000000001", IsActive: true},
		"BR-2025-0000000002": {ID: "BR-2025-0000000002", IsActive: true},
	}}
	svc := newTestService(repo, persons)

	_, err := svc.Submit(context.Background(), residentActor("BR-2025-0000000001"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), residentActor("BR-2025-0000000002"), SubmitRequest{Kind: "BARANGAY_ID", Purpose: "id"})
	require.NoError(t, err)

	mine, total, err := svc.List(context.Background(), residentActor("BR-2025-0000000001"), ListRequestsRequest{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, mine, 1)
	assert.Equal(t, "BR-2025-0000000001", mine[0].PersonID)

	_, total, err = svc.List(context.Background(), clerkActor(), ListRequestsRequest{Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

package residents

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

type mockRepository struct {
	persons map[string]*Person
	seq     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{persons: make(map[string]*Person)}
}

func (m *mockRepository) Get(ctx context.Context, id string) (*Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListPersonsRequest) ([]Person, int, error) {
	var out []Person
	for _, p := range m.persons {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockRepository) FindActiveDuplicates(ctx context.Context, first, last string, birth time.Time) ([]Person, error) {
	var out []Person
	for _, p := range m.persons {
		if p.IsActive && p.FirstName == first && p.LastName == last && p.BirthDate.Equal(birth) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockRepository) Create(ctx context.Context, p Person) error {
	cp := p
	m.persons[p.ID] = &cp
	return nil
}

func (m *mockRepository) Update(ctx context.Context, p Person) error {
	if _, ok := m.persons[p.ID]; !ok {
		return shared.ErrNotFound
	}
	cp := p
	m.persons[p.ID] = &cp
	return nil
}

func (m *mockRepository) SetActive(ctx context.Context, id string, active bool, reason *string) error {
	p, ok := m.persons[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsActive = active
	p.DeactivationReason = reason
	return nil
}

func (m *mockRepository) SetVoter(ctx context.Context, id string, voter bool) error {
	p, ok := m.persons[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.IsVoter = voter
	return nil
}

func (m *mockRepository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	return m.seq, nil
}

func clerkActor() shared.Actor {
	return shared.Actor{AccountID: 7, Username: "clerk.reyes", Role: roles.RoleClerk, Active: true}
}

func adminActor() shared.Actor {
	return shared.Actor{AccountID: 3, Username: "admin.cruz", Role: roles.RoleAdmin, Active: true}
}

func residentActor() shared.Actor {
	pid := "BR-2025-0000000001"
	return shared.Actor{AccountID: 21, Username: "juan.delacruz", Role: roles.RoleResident, PersonID: &pid, Active: true}
}

func newTestService(repo *mockRepository) *Service {
	alloc := sequence.NewAllocator(repo).WithClock(func() time.Time {
		return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	})
	return NewService(repo, alloc, nil, nil)
}

func TestCreateAllocatesResidentReference(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	person, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "juan",
		LastName:  "dela cruz",
		BirthDate: time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC),
		Gender:    "MALE",
	})
	require.NoError(t, err)
	assert.Equal(t, "BR-2025-0000000001", person.ID)
	assert.True(t, person.IsActive)
	assert.False(t, person.IsVoter)
	assert.Equal(t, "Juan", person.FirstName)
	assert.Equal(t, "Dela Cruz", person.LastName)
}

func TestCreateRejectsResidentRole(t *testing.T) {
	svc := newTestService(newMockRepository())

	_, err := svc.Create(context.Background(), residentActor(), CreatePersonRequest{
		FirstName: "Maria",
		LastName:  "Santos",
		BirthDate: time.Date(1992, 1, 2, 0, 0, 0, 0, time.UTC),
		Gender:    "FEMALE",
	})
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestCreateDetectsActiveDuplicates(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	birth := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Juan", LastName: "Dela Cruz", BirthDate: birth, Gender: "MALE",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "juan", LastName: "dela cruz", BirthDate: birth, Gender: "MALE",
	})
	require.ErrorIs(t, err, shared.ErrConflict)

	// Explicit override after staff review.
	repo.seq = 1
	dup, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Juan", LastName: "Dela Cruz", BirthDate: birth, Gender: "MALE",
		AllowDuplicate: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "BR-2025-0000000002", dup.ID)
}

func TestDeactivateRequiresAdmin(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	person, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Ana", LastName: "Lopez",
		BirthDate: time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), Gender: "FEMALE",
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), clerkActor(), person.ID, "moved away")
	require.ErrorIs(t, err, shared.ErrUnauthorized)

	deactivated, err := svc.Deactivate(context.Background(), adminActor(), person.ID, "moved away")
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	require.NotNil(t, deactivated.DeactivationReason)
	assert.Equal(t, "moved away", *deactivated.DeactivationReason)
}

func TestDeactivateAlreadyInactive(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	person, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Ana", LastName: "Lopez",
		BirthDate: time.Date(1985, 7, 1, 0, 0, 0, 0, time.UTC), Gender: "FEMALE",
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), adminActor(), person.ID, "moved away")
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), adminActor(), person.ID, "moved again")
	require.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestReactivateClearsReason(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	person, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Pedro", LastName: "Garcia",
		BirthDate: time.Date(1970, 2, 14, 0, 0, 0, 0, time.UTC), Gender: "MALE",
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), adminActor(), person.ID, "deceased entry error")
	require.NoError(t, err)

	restored, err := svc.Reactivate(context.Background(), adminActor(), person.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.DeactivationReason)
}

func TestUpdateKeepsIdentifier(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	person, err := svc.Create(context.Background(), clerkActor(), CreatePersonRequest{
		FirstName: "Jose", LastName: "Rizal",
		BirthDate: time.Date(1995, 6, 19, 0, 0, 0, 0, time.UTC), Gender: "MALE",
	})
	require.NoError(t, err)

	newLast := "rizal mercado"
	updated, err := svc.Update(context.Background(), clerkActor(), person.ID, UpdatePersonRequest{LastName: &newLast})
	require.NoError(t, err)
	assert.Equal(t, person.ID, updated.ID)
	assert.Equal(t, "Rizal Mercado", updated.LastName)
}

func TestGetUnknownResident(t *testing.T) {
	svc := newTestService(newMockRepository())
	_, err := svc.Get(context.Background(), clerkActor(), fmt.Sprintf("BR-2025-%010d", 99))
	require.ErrorIs(t, err, shared.ErrNotFound)
}

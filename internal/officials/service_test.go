package officials

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/shared"
)

type mockRepository struct {
	roster map[int64]*Official
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{roster: make(map[int64]*Official), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, activeOnly bool) ([]Official, error) {
	var out []Official
	for _, o := range m.roster {
		if activeOnly && !o.Active {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockRepository) FindByPosition(ctx context.Context, position string) (*Official, error) {
	for _, o := range m.roster {
		if o.Active && o.Position == position {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) Upsert(ctx context.Context, o Official) (*Official, error) {
	if o.ID == 0 {
		o.ID = m.nextID
		m.nextID++
	}
	cp := o
	m.roster[o.ID] = &cp
	return &cp, nil
}

func (m *mockRepository) SetActive(ctx context.Context, id int64, active bool) error {
	o, ok := m.roster[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Active = active
	return nil
}

func adminActor() shared.Actor {
	return shared.Actor{AccountID: 3, Username: "admin.cruz", Role: roles.RoleAdmin, Active: true}
}

func clerkActor() shared.Actor {
	return shared.Actor{AccountID: 7, Username: "clerk.reyes", Role: roles.RoleClerk, Active: true}
}

func TestUpsertRequiresAdmin(t *testing.T) {
	svc := NewService(newMockRepository())
	req := UpsertOfficialRequest{FullName: "Ramon Bautista", Position: PositionCaptain, TermStart: time.Now()}

	_, err := svc.Upsert(context.Background(), clerkActor(), req)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	official, err := svc.Upsert(context.Background(), adminActor(), req)
	require.NoError(t, err)
	assert.True(t, official.Active)
	assert.NotZero(t, official.ID)
}

func TestUpsertRejectsInvertedTerm(t *testing.T) {
	svc := NewService(newMockRepository())
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(-1, 0, 0)

	_, err := svc.Upsert(context.Background(), adminActor(), UpsertOfficialRequest{
		FullName: "Ramon Bautista", Position: PositionCaptain, TermStart: start, TermEnd: &end,
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSignatoryFindsActiveCaptain(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Signatory(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	official, err := svc.Upsert(context.Background(), adminActor(), UpsertOfficialRequest{
		FullName: "Ramon Bautista", Position: PositionCaptain, TermStart: time.Now(),
	})
	require.NoError(t, err)

	got, err := svc.Signatory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, official.ID, got.ID)

	require.NoError(t, svc.SetActive(context.Background(), adminActor(), official.ID, false))
	_, err = svc.Signatory(context.Background())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

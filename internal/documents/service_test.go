package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civreg-ph/civreg/internal/requests"
	"github.com/civreg-ph/civreg/internal/residents"
	"github.com/civreg-ph/civreg/internal/roles"
	"github.com/civreg-ph/civreg/internal/sequence"
	"github.com/civreg-ph/civreg/internal/shared"
)

type mockRepository struct {
	documents map[string]*IssuedDocument
	requests  *mockRequests
}

func newMockRepository(reqs *mockRequests) *mockRepository {
	return &mockRepository{documents: make(map[string]*IssuedDocument), requests: reqs}
}

func (m *mockRepository) Get(ctx context.Context, reference string) (*IssuedDocument, error) {
	d, ok := m.documents[reference]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockRepository) List(ctx context.Context, req ListDocumentsRequest) ([]IssuedDocument, int, error) {
	var out []IssuedDocument
	for _, d := range m.documents {
		if req.PersonID != nil && d.PersonID != *req.PersonID {
			continue
		}
		if req.Kind != nil && d.Kind != *req.Kind {
			continue
		}
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (m *mockRepository) CreateIssued(ctx context.Context, d IssuedDocument, closed *requests.DocumentRequest) error {
	if closed != nil {
		if _, ok := m.requests.store[closed.ID]; !ok {
			return shared.ErrNotFound
		}
		cp := *closed
		m.requests.store[closed.ID] = &cp
	}
	doc := d
	m.documents[d.Reference] = &doc
	return nil
}

func (m *mockRepository) UpdateMetadata(ctx context.Context, reference string, additionalInfo, photoRef *string) error {
	d, ok := m.documents[reference]
	if !ok {
		return shared.ErrNotFound
	}
	if additionalInfo != nil {
		d.AdditionalInfo = additionalInfo
	}
	if photoRef != nil {
		d.PhotoRef = photoRef
	}
	return nil
}

func (m *mockRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]IssuedDocument, error) {
	var out []IssuedDocument
	for _, d := range m.documents {
		if d.ExpiryDate != nil && !d.ExpiryDate.Before(from) && d.ExpiryDate.Before(to) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockRepository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	var max int64
	for ref := range m.documents {
		if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
			max++
		}
	}
	return max, nil
}

type mockRequests struct {
	store map[string]*requests.DocumentRequest
}

func (m *mockRequests) Get(ctx context.Context, id string) (*requests.DocumentRequest, error) {
	r, ok := m.store[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *r
	return &cp, nil
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

type fixture struct {
	svc      *Service
	repo     *mockRepository
	requests *mockRequests
	persons  *mockPersons
}

func newFixture() *fixture {
	persons := &mockPersons{persons: map[string]*residents.Person{
		"BR-2025-0000000001": {ID: "BR-2025-0000000001", FirstName: "Juan", LastName: "Dela Cruz", IsActive: true},
		"BR-2025-0000000002": {ID: "BR-2025-0000000002", FirstName: "Maria", LastName: "Santos", IsActive: true},
	}}
	reqs := &mockRequests{store: make(map[string]*requests.DocumentRequest)}
	repo := newMockRepository(reqs)
	clock := func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	alloc := sequence.NewAllocator(repo).WithClock(clock)
	svc := NewService(repo, persons, reqs, alloc, nil, nil).WithClock(clock)
	return &fixture{svc: svc, repo: repo, requests: reqs, persons: persons}
}

func (f *fixture) seedRequest(id, personID string, status requests.Status) {
	f.requests.store[id] = &requests.DocumentRequest{
		ID:       id,
		PersonID: personID,
		Kind:     string(KindBarangayID),
		Purpose:  "employment requirement",
		Status:   status,
	}
}

func TestIssueFromApprovedRequest(t *testing.T) {
	f := newFixture()
	f.seedRequest("DR-2025-0000000001", "BR-2025-0000000001", requests.StatusApproved)
	reqID := "DR-2025-0000000001"

	doc, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID:  "BR-2025-0000000001",
		Kind:      KindBarangayID,
		Purpose:   "employment requirement",
		RequestID: &reqID,
	})
	require.NoError(t, err)
	assert.Equal(t, "BID-2025-0000000001", doc.Reference)
	assert.Equal(t, "clerk.reyes", doc.IssuedBy)
	require.NotNil(t, doc.RequestID)
	assert.Equal(t, reqID, *doc.RequestID)

	closed := f.requests.store[reqID]
	assert.Equal(t, requests.StatusIssued, closed.Status)
	require.NotNil(t, closed.DocumentReference)
	assert.Equal(t, "BID-2025-0000000001", *closed.DocumentReference)
}

func TestIssueWalkIn(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001",
		Kind:     KindCertResidency,
		Purpose:  "scholarship application",
	})
	require.NoError(t, err)
	assert.Equal(t, "CR-2025-0000000001", doc.Reference)
	assert.Nil(t, doc.RequestID)
}

func TestIssueStaffOnly(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Issue(context.Background(), residentActor("BR-2025-0000000001"), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001",
		Kind:     KindBarangayID,
		Purpose:  "id",
	})
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestIssueRejectsInactiveResident(t *testing.T) {
	f := newFixture()
	f.persons.persons["BR-2025-0000000001"].IsActive = false

	_, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001",
		Kind:     KindBarangayID,
		Purpose:  "id",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestIssueRejectsUnapprovedRequest(t *testing.T) {
	f := newFixture()
	f.seedRequest("DR-2025-0000000001", "BR-2025-0000000001", requests.StatusUnderReview)
	reqID := "DR-2025-0000000001"

	_, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID:  "BR-2025-0000000001",
		Kind:      KindBarangayID,
		Purpose:   "id",
		RequestID: &reqID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, err.Error(), "only approved requests can be issued")

	assert.Empty(t, f.repo.documents)
	assert.Equal(t, requests.StatusUnderReview, f.requests.store[reqID].Status)
}

func TestIssueRejectsForeignRequest(t *testing.T) {
	f := newFixture()
	f.seedRequest("DR-2025-0000000001", "BR-2025-0000000002", requests.StatusApproved)
	reqID := "DR-2025-0000000001"

	_, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID:  "BR-2025-0000000001",
		Kind:      KindBarangayID,
		Purpose:   "id",
		RequestID: &reqID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Contains(t, err.Error(), "request does not belong to resident")
	assert.Empty(t, f.repo.documents)
}

func TestIssueSequencesPerPrefix(t *testing.T) {
	f := newFixture()

	first, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001", Kind: KindBarangayClearance, Purpose: "travel",
	})
	require.NoError(t, err)
	assert.Equal(t, "BC-2025-0000000001", first.Reference)

	second, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000002", Kind: KindBarangayClearance, Purpose: "travel",
	})
	require.NoError(t, err)
	assert.Equal(t, "BC-2025-0000000002", second.Reference)

	other, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001", Kind: KindBarangayID, Purpose: "id",
	})
	require.NoError(t, err)
	assert.Equal(t, "BID-2025-0000000001", other.Reference)
}

func TestUpdateMetadata(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001", Kind: KindBarangayID, Purpose: "id",
	})
	require.NoError(t, err)

	photo := "uploads/photo.jpg"
	updated, err := f.svc.UpdateMetadata(context.Background(), clerkActor(), doc.Reference, UpdateMetadataRequest{PhotoRef: &photo})
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoRef)
	assert.Equal(t, photo, *updated.PhotoRef)
	assert.Equal(t, doc.Reference, updated.Reference)
}

func TestGetScopesResidents(t *testing.T) {
	f := newFixture()
	doc, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID: "BR-2025-0000000001", Kind: KindBarangayID, Purpose: "id",
	})
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), residentActor("BR-2025-0000000002"), doc.Reference)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	got, err := f.svc.Get(context.Background(), residentActor("BR-2025-0000000001"), doc.Reference)
	require.NoError(t, err)
	assert.Equal(t, doc.Reference, got.Reference)
}

func TestKindPrefixes(t *testing.T) {
	assert.Equal(t, "BID", KindBarangayID.Prefix())
	assert.Equal(t, "BC", KindBarangayClearance.Prefix())
	assert.Equal(t, "CR", KindCertResidency.Prefix())
	assert.False(t, Kind("PASSPORT").Valid())
}

type fakeRecorder struct {
	issued      []string
	transitions []string
}

func (r *fakeRecorder) RecordIssuance(kind string) { r.issued = append(r.issued, kind) }
func (r *fakeRecorder) RecordTransition(entity, to string) {
	r.transitions = append(r.transitions, entity+":"+to)
}

func TestIssueRecordsMetrics(t *testing.T) {
	f := newFixture()
	rec := &fakeRecorder{}
	f.svc.WithMetrics(rec)
	f.seedRequest("DR-2025-0000000001", "BR-2025-0000000001", requests.StatusApproved)
	reqID := "DR-2025-0000000001"

	_, err := f.svc.Issue(context.Background(), clerkActor(), IssueDocumentRequest{
		PersonID:  "BR-2025-0000000001",
		Kind:      KindBarangayID,
		Purpose:   "employment requirement",
		RequestID: &reqID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"BARANGAY_ID"}, rec.issued)
	assert.Equal(t, []string{"document_request:ISSUED"}, rec.transitions)
}

package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civreg-ph/civreg/internal/documents"
	"github.com/civreg-ph/civreg/internal/voters"
)

type stubDocumentStore struct {
	docs []documents.IssuedDocument
}

func (s *stubDocumentStore) ListExpiring(ctx context.Context, from, to time.Time) ([]documents.IssuedDocument, error) {
	var out []documents.IssuedDocument
	for _, d := range s.docs {
		if d.ExpiryDate != nil && !d.ExpiryDate.Before(from) && d.ExpiryDate.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

type stubApplicationStore struct {
	apps []voters.VoterApplication
}

func (s *stubApplicationStore) List(ctx context.Context, req voters.ListApplicationsRequest) ([]voters.VoterApplication, int, error) {
	var out []voters.VoterApplication
	for _, a := range s.apps {
		if req.Status != nil && a.Status != *req.Status {
			continue
		}
		out = append(out, a)
	}
	return out, len(out), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExpiryScanFindsWindowedDocuments(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 10)
	far := now.AddDate(0, 2, 0)
	past := now.AddDate(0, 0, -1)

	store := &stubDocumentStore{docs: []documents.IssuedDocument{
		{Reference: "BID-2025-0000000001", PersonID: "BR-2025-0000000001", ExpiryDate: &soon},
		{Reference: "BC-2025-0000000001", PersonID: "BR-2025-0000000002", ExpiryDate: &far},
		{Reference: "BC-2024-0000000009", PersonID: "BR-2024-0000000003", ExpiryDate: &past},
		{Reference: "CR-2025-0000000001", PersonID: "BR-2025-0000000004"},
	}}
	scanner := NewExpiryScanner(store, discardLogger())
	scanner.now = func() time.Time { return now }

	docs, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "BID-2025-0000000001", docs[0].Reference)
}

func TestAppointmentReminderDueTomorrow(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tomorrow := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)

	store := &stubApplicationStore{apps: []voters.VoterApplication{
		{ID: "VA-2025-0000000001", PersonID: "BR-2025-0000000001", Status: voters.StatusScheduled, AppointmentAt: &tomorrow},
		{ID: "VA-2025-0000000002", PersonID: "BR-2025-0000000002", Status: voters.StatusScheduled, AppointmentAt: &nextWeek},
		{ID: "VA-2025-0000000003", PersonID: "BR-2025-0000000003", Status: voters.StatusPending},
	}}
	reminder := NewAppointmentReminder(store, discardLogger())
	reminder.now = func() time.Time { return now }

	due, err := reminder.DueTomorrow(context.Background())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "VA-2025-0000000001", due[0].ID)
}

func TestSendEmailTaskRoundTrip(t *testing.T) {
	task, err := NewSendEmailTask(SendEmailPayload{To: "resident@example.com", Subject: "Appointment reminder", Body: "See you tomorrow."})
	require.NoError(t, err)
	assert.Equal(t, TaskTypeSendEmail, task.Type())

	require.NoError(t, HandleSendEmailTask(context.Background(), task))
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/civreg-ph/civreg/internal/documents"
	jobmetrics "github.com/civreg-ph/civreg/internal/jobs"
)

// expiryWindow is how far ahead the nightly scan looks for documents
// about to lapse.
const expiryWindow = 30 * 24 * time.Hour

// ExpiringDocumentStore lists documents whose expiry date falls inside
// a window.
type ExpiringDocumentStore interface {
	ListExpiring(ctx context.Context, from, to time.Time) ([]documents.IssuedDocument, error)
}

// ExpiryScanner flags issued documents that lapse within the window so
// the office can notify holders before renewal deadlines.
type ExpiryScanner struct {
	store  ExpiringDocumentStore
	logger *slog.Logger
	now    func() time.Time
}

// NewExpiryScanner constructs an ExpiryScanner.
func NewExpiryScanner(store ExpiringDocumentStore, logger *slog.Logger) *ExpiryScanner {
	return &ExpiryScanner{store: store, logger: logger, now: time.Now}
}

// Scan lists documents expiring inside the window and returns them.
func (s *ExpiryScanner) Scan(ctx context.Context) ([]documents.IssuedDocument, error) {
	from := s.now()
	to := from.Add(expiryWindow)
	docs, err := s.store.ListExpiring(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		s.logger.Info("document nearing expiry",
			slog.String("reference", doc.Reference),
			slog.String("person_id", doc.PersonID),
			slog.Time("expiry_date", *doc.ExpiryDate))
	}
	return docs, nil
}

// Handler adapts the scanner to an Asynq handler.
func (s *ExpiryScanner) Handler() asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(nil)
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("document_expiry_scan")
		docs, err := s.Scan(ctx)
		if err != nil {
			return tracker.End(err)
		}
		s.logger.Info("expiry scan finished", slog.Int("expiring", len(docs)))
		return tracker.End(nil)
	}
}

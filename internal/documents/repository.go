package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg-ph/civreg/internal/platform/db"
	"github.com/civreg-ph/civreg/internal/requests"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Repository defines data access for issued documents.
type Repository interface {
	Get(ctx context.Context, reference string) (*IssuedDocument, error)
	List(ctx context.Context, req ListDocumentsRequest) ([]IssuedDocument, int, error)
	// CreateIssued persists the document and, when a closed-out request
	// is supplied, updates it in the same transaction. A crash cannot
	// leave an approved request without its document or vice versa.
	CreateIssued(ctx context.Context, d IssuedDocument, closed *requests.DocumentRequest) error
	UpdateMetadata(ctx context.Context, reference string, additionalInfo, photoRef *string) error
	// ListExpiring returns documents whose expiry date falls inside the
	// window. Used by the nightly expiry scan.
	ListExpiring(ctx context.Context, from, to time.Time) ([]IssuedDocument, error)
	MaxSequence(ctx context.Context, prefix string, year int) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const documentColumns = `reference, person_id, kind, purpose, issue_date, expiry_date,
issued_by, request_id, additional_info, photo_ref, created_at`

func (r *repository) Get(ctx context.Context, reference string) (*IssuedDocument, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM issued_documents WHERE reference = $1`, reference)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (r *repository) List(ctx context.Context, req ListDocumentsRequest) ([]IssuedDocument, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.PersonID != nil {
		conditions = append(conditions, fmt.Sprintf("person_id = $%d", argPos))
		args = append(args, *req.PersonID)
		argPos++
	}
	if req.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argPos))
		args = append(args, string(*req.Kind))
		argPos++
	}

	whereClause := ""
	for i, cond := range conditions {
		if i == 0 {
			whereClause = "WHERE " + cond
		} else {
			whereClause += " AND " + cond
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM issued_documents %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM issued_documents %s ORDER BY issue_date DESC, reference DESC LIMIT $%d OFFSET $%d`,
		documentColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []IssuedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) CreateIssued(ctx context.Context, d IssuedDocument, closed *requests.DocumentRequest) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO issued_documents
(reference, person_id, kind, purpose, issue_date, expiry_date, issued_by, request_id, additional_info, photo_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())`,
			d.Reference, d.PersonID, string(d.Kind), d.Purpose, d.IssueDate, d.ExpiryDate, d.IssuedBy, d.RequestID, d.AdditionalInfo, d.PhotoRef)
		if err != nil {
			return err
		}
		if closed == nil {
			return nil
		}
		tag, err := tx.Exec(ctx, `UPDATE document_requests SET
status = $2, staff_notes = $3, handled_by = $4, document_reference = $5, updated_at = $6
WHERE id = $1`,
			closed.ID, string(closed.Status), closed.StaffNotes, closed.HandledBy, closed.DocumentReference, closed.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) UpdateMetadata(ctx context.Context, reference string, additionalInfo, photoRef *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE issued_documents SET
additional_info = COALESCE($2, additional_info), photo_ref = COALESCE($3, photo_ref)
WHERE reference = $1`, reference, additionalInfo, photoRef)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListExpiring(ctx context.Context, from, to time.Time) ([]IssuedDocument, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM issued_documents WHERE expiry_date IS NOT NULL AND expiry_date >= $1 AND expiry_date < $2 ORDER BY expiry_date`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IssuedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

func (r *repository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(RIGHT(reference, 10) AS BIGINT)), 0) FROM issued_documents WHERE reference LIKE $1`, pattern).Scan(&max)
	return max, err
}

func scanDocument(row pgx.Row) (*IssuedDocument, error) {
	var d IssuedDocument
	var kind string
	var expiryDate pgtype.Date
	var requestID, additionalInfo, photoRef pgtype.Text

	err := row.Scan(&d.Reference, &d.PersonID, &kind, &d.Purpose, &d.IssueDate, &expiryDate,
		&d.IssuedBy, &requestID, &additionalInfo, &photoRef, &d.CreatedAt)
	if err != nil {
		return nil, err
	}

	d.Kind = Kind(kind)
	if expiryDate.Valid {
		d.ExpiryDate = &expiryDate.Time
	}
	if requestID.Valid {
		d.RequestID = &requestID.String
	}
	if additionalInfo.Valid {
		d.AdditionalInfo = &additionalInfo.String
	}
	if photoRef.Valid {
		d.PhotoRef = &photoRef.String
	}
	return &d, nil
}

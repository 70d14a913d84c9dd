package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Repository defines data access for document requests.
type Repository interface {
	Get(ctx context.Context, id string) (*DocumentRequest, error)
	List(ctx context.Context, req ListRequestsRequest) ([]DocumentRequest, int, error)
	Create(ctx context.Context, r DocumentRequest) error
	Update(ctx context.Context, r DocumentRequest) error
	MaxSequence(ctx context.Context, prefix string, year int) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const requestColumns = `id, person_id, kind, purpose, requested_expiry, resident_notes,
additional_info, status, staff_notes, handled_by, document_reference, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (*DocumentRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM document_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *repository) List(ctx context.Context, req ListRequestsRequest) ([]DocumentRequest, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.PersonID != nil {
		conditions = append(conditions, fmt.Sprintf("person_id = $%d", argPos))
		args = append(args, *req.PersonID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM document_requests %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM document_requests %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		requestColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []DocumentRequest
	for rows.Next() {
		dr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *dr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, dr DocumentRequest) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO document_requests
(id, person_id, kind, purpose, requested_expiry, resident_notes, additional_info, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
		dr.ID, dr.PersonID, dr.Kind, dr.Purpose, dr.RequestedExpiry, dr.ResidentNotes, dr.AdditionalInfo, string(dr.Status))
	return err
}

func (r *repository) Update(ctx context.Context, dr DocumentRequest) error {
	tag, err := r.pool.Exec(ctx, `UPDATE document_requests SET
status = $2, staff_notes = $3, handled_by = $4, document_reference = $5, updated_at = $6
WHERE id = $1`,
		dr.ID, string(dr.Status), dr.StaffNotes, dr.HandledBy, dr.DocumentReference, dr.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(RIGHT(id, 10) AS BIGINT)), 0) FROM document_requests WHERE id LIKE $1`, pattern).Scan(&max)
	return max, err
}

func scanRequest(row pgx.Row) (*DocumentRequest, error) {
	var dr DocumentRequest
	var status string
	var requestedExpiry pgtype.Date
	var residentNotes, additionalInfo, staffNotes, handledBy, docRef pgtype.Text

	err := row.Scan(&dr.ID, &dr.PersonID, &dr.Kind, &dr.Purpose, &requestedExpiry, &residentNotes,
		&additionalInfo, &status, &staffNotes, &handledBy, &docRef, &dr.CreatedAt, &dr.UpdatedAt)
	if err != nil {
		return nil, err
	}

	dr.Status = Status(status)
	if requestedExpiry.Valid {
		dr.RequestedExpiry = &requestedExpiry.Time
	}
	if residentNotes.Valid {
		dr.ResidentNotes = &residentNotes.String
	}
	if additionalInfo.Valid {
		dr.AdditionalInfo = &additionalInfo.String
	}
	if staffNotes.Valid {
		dr.StaffNotes = &staffNotes.String
	}
	if handledBy.Valid {
		dr.HandledBy = &handledBy.String
	}
	if docRef.Valid {
		dr.DocumentReference = &docRef.String
	}
	return &dr, nil
}

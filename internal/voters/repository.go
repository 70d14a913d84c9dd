package voters

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg-ph/civreg/internal/platform/db"
	"github.com/civreg-ph/civreg/internal/shared"
)

// Repository defines data access for voter applications.
type Repository interface {
	Get(ctx context.Context, id string) (*VoterApplication, error)
	List(ctx context.Context, req ListApplicationsRequest) ([]VoterApplication, int, error)
	Create(ctx context.Context, a VoterApplication) error
	Update(ctx context.Context, a VoterApplication) error
	// MarkVerified persists the verified application and sets the
	// resident's voter flag in one transaction.
	MarkVerified(ctx context.Context, a VoterApplication) error
	MaxSequence(ctx context.Context, prefix string, year int) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const applicationColumns = `id, person_id, kind, id_front_ref, id_back_ref, transfer_details,
status, review_notes, reviewed_by, appointment_at, venue, slip_reference, submitted_at, reviewed_at, updated_at`

func (r *repository) Get(ctx context.Context, id string) (*VoterApplication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM voter_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

func (r *repository) List(ctx context.Context, req ListApplicationsRequest) ([]VoterApplication, int, error) {
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
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM voter_applications %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM voter_applications %s ORDER BY submitted_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []VoterApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, a VoterApplication) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO voter_applications
(id, person_id, kind, id_front_ref, id_back_ref, transfer_details, status, submitted_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`,
		a.ID, a.PersonID, string(a.Kind), a.IDFrontRef, a.IDBackRef, a.TransferDetails, string(a.Status))
	return err
}

func (r *repository) Update(ctx context.Context, a VoterApplication) error {
	tag, err := r.pool.Exec(ctx, updateApplicationSQL,
		a.ID, string(a.Status), a.ReviewNotes, a.ReviewedBy, a.AppointmentAt, a.Venue, a.SlipReference, a.ReviewedAt, a.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const updateApplicationSQL = `UPDATE voter_applications SET
status = $2, review_notes = $3, reviewed_by = $4, appointment_at = $5, venue = $6, slip_reference = $7, reviewed_at = $8, updated_at = $9
WHERE id = $1`

func (r *repository) MarkVerified(ctx context.Context, a VoterApplication) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, updateApplicationSQL,
			a.ID, string(a.Status), a.ReviewNotes, a.ReviewedBy, a.AppointmentAt, a.Venue, a.SlipReference, a.ReviewedAt, a.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		tag, err = tx.Exec(ctx, `UPDATE persons SET is_voter = TRUE, updated_at = NOW() WHERE id = $1`, a.PersonID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *repository) MaxSequence(ctx context.Context, prefix string, year int) (int64, error) {
	pattern := fmt.Sprintf("%s-%d-%%", prefix, year)
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(CAST(RIGHT(id, 10) AS BIGINT)), 0) FROM voter_applications WHERE id LIKE $1`, pattern).Scan(&max)
	return max, err
}

func scanApplication(row pgx.Row) (*VoterApplication, error) {
	var a VoterApplication
	var kind, status string
	var transferDetails, reviewNotes, reviewedBy, venue, slipRef pgtype.Text
	var appointmentAt, reviewedAt pgtype.Timestamptz

	err := row.Scan(&a.ID, &a.PersonID, &kind, &a.IDFrontRef, &a.IDBackRef, &transferDetails,
		&status, &reviewNotes, &reviewedBy, &appointmentAt, &venue, &slipRef, &a.SubmittedAt, &reviewedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	a.Kind = Kind(kind)
	a.Status = Status(status)
	if transferDetails.Valid {
		a.TransferDetails = &transferDetails.String
	}
	if reviewNotes.Valid {
		a.ReviewNotes = &reviewNotes.String
	}
	if reviewedBy.Valid {
		a.ReviewedBy = &reviewedBy.String
	}
	if appointmentAt.Valid {
		a.AppointmentAt = &appointmentAt.Time
	}
	if venue.Valid {
		a.Venue = &venue.String
	}
	if slipRef.Valid {
		a.SlipReference = &slipRef.String
	}
	if reviewedAt.Valid {
		a.ReviewedAt = &reviewedAt.Time
	}
	return &a, nil
}

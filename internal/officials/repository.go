package officials

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Repository defines data access for the officials roster.
type Repository interface {
	List(ctx context.Context, activeOnly bool) ([]Official, error)
	FindByPosition(ctx context.Context, position string) (*Official, error)
	Upsert(ctx context.Context, o Official) (*Official, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const officialColumns = `id, full_name, position, term_start, term_end, sort_order, active`

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Official, error) {
	query := `SELECT ` + officialColumns + ` FROM barangay_officials`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY sort_order, full_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Official
	for rows.Next() {
		o, err := scanOfficial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *repository) FindByPosition(ctx context.Context, position string) (*Official, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+officialColumns+` FROM barangay_officials WHERE position = $1 AND active ORDER BY sort_order LIMIT 1`, position)
	o, err := scanOfficial(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *repository) Upsert(ctx context.Context, o Official) (*Official, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO barangay_officials (id, full_name, position, term_start, term_end, sort_order, active)
VALUES (COALESCE(NULLIF($1, 0), nextval('barangay_officials_id_seq')), $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
full_name = EXCLUDED.full_name, position = EXCLUDED.position, term_start = EXCLUDED.term_start,
term_end = EXCLUDED.term_end, sort_order = EXCLUDED.sort_order, active = EXCLUDED.active
RETURNING `+officialColumns,
		o.ID, o.FullName, o.Position, o.TermStart, o.TermEnd, o.SortOrder, o.Active)
	return scanOfficial(row)
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE barangay_officials SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanOfficial(row pgx.Row) (*Official, error) {
	var o Official
	var termEnd pgtype.Date
	if err := row.Scan(&o.ID, &o.FullName, &o.Position, &o.TermStart, &termEnd, &o.SortOrder, &o.Active); err != nil {
		return nil, err
	}
	if termEnd.Valid {
		o.TermEnd = &termEnd.Time
	}
	return &o, nil
}

package residents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civreg-ph/civreg/internal/shared"
)

// Repository defines data access for resident records.
type Repository interface {
	Get(ctx context.Context, id string) (*Person, error)
	List(ctx context.Context, req ListPersonsRequest) ([]Person, int, error)
	FindActiveDuplicates(ctx context.Context, firstName, lastName string, birthDate time.Time) ([]Person, error)
	Create(ctx context.Context, p Person) error
	Update(ctx context.Context, p Person) error
	SetActive(ctx context.Context, id string, active bool, reason *string) error
	SetVoter(ctx context.Context, id string, voter bool) error
	MaxSequence(ctx context.Context, prefix string, year int) (int64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository backed by the pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const personColumns = `id, first_name, middle_name, last_name, suffix, birth_date, gender,
address, contact_number, is_active, deactivation_reason, is_voter,
created_at, updated_at, deactivated_at`

func (r *repository) Get(ctx context.Context, id string) (*Person, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM persons WHERE id = $1`, personColumns), id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListPersonsRequest) ([]Person, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR id ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.IsVoter != nil {
		conditions = append(conditions, fmt.Sprintf("is_voter = $%d", argPos))
		args = append(args, *req.IsVoter)
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
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM persons %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM persons %s ORDER BY last_name ASC, first_name ASC LIMIT $%d OFFSET $%d`,
		personColumns, whereClause, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var persons []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, 0, err
		}
		persons = append(persons, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return persons, total, nil
}

func (r *repository) FindActiveDuplicates(ctx context.Context, firstName, lastName string, birthDate time.Time) ([]Person, error) {
	query := fmt.Sprintf(`SELECT %s FROM persons
WHERE is_active = TRUE AND LOWER(first_name) = LOWER($1) AND LOWER(last_name) = LOWER($2) AND birth_date = $3`, personColumns)
	rows, err := r.pool.Query(ctx, query, firstName, lastName, birthDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var persons []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		persons = append(persons, *p)
	}
	return persons, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Person) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO persons
(id, first_name, middle_name, last_name, suffix, birth_date, gender, address, contact_number, is_active, is_voter, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.BirthDate, p.Gender,
		p.Address, p.ContactNumber, p.IsActive, p.IsVoter)
	return err
}

func (r *repository) Update(ctx context.Context, p Person) error {
	tag, err := r.pool.Exec(ctx, `UPDATE persons SET
first_name = $2, middle_name = $3, last_name = $4, suffix = $5, birth_date = $6,
gender = $7, address = $8, contact_number = $9, updated_at = NOW()
WHERE id = $1`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, p.Suffix, p.BirthDate,
		p.Gender, p.Address, p.ContactNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id string, active bool, reason *string) error {
	var tagQuery string
	if active {
		tagQuery = `UPDATE persons SET is_active = TRUE, deactivation_reason = NULL, deactivated_at = NULL, updated_at = NOW() WHERE id = $1`
		tag, err := r.pool.Exec(ctx, tagQuery, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	}
	tag, err := r.pool.Exec(ctx, `UPDATE persons SET is_active = FALSE, deactivation_reason = $2, deactivated_at = NOW(), updated_at = NOW() WHERE id = $1`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetVoter(ctx context.Context, id string, voter bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE persons SET is_voter = $2, updated_at = NOW() WHERE id = $1`, id, voter)
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
		`SELECT COALESCE(MAX(CAST(RIGHT(id, 10) AS BIGINT)), 0) FROM persons WHERE id LIKE $1`, pattern).Scan(&max)
	return max, err
}

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	var middleName, suffix, address, contact, reason pgtype.Text
	var birthDate pgtype.Date
	var deactivatedAt pgtype.Timestamptz

	err := row.Scan(&p.ID, &p.FirstName, &middleName, &p.LastName, &suffix, &birthDate,
		&p.Gender, &address, &contact, &p.IsActive, &reason, &p.IsVoter,
		&p.CreatedAt, &p.UpdatedAt, &deactivatedAt)
	if err != nil {
		return nil, err
	}

	if middleName.Valid {
		p.MiddleName = &middleName.String
	}
	if suffix.Valid {
		p.Suffix = &suffix.String
	}
	if birthDate.Valid {
		p.BirthDate = birthDate.Time
	}
	if address.Valid {
		p.Address = &address.String
	}
	if contact.Valid {
		p.ContactNumber = &contact.String
	}
	if reason.Valid {
		p.DeactivationReason = &reason.String
	}
	if deactivatedAt.Valid {
		p.DeactivatedAt = &deactivatedAt.Time
	}
	return &p, nil
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/subject"
)

const subjectColumns = `id, code, name, grade, created_at, updated_at`

type subjectRow struct {
	ID        string    `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Grade     int       `db:"grade"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r subjectRow) offering() subject.Offering {
	return subject.Offering{
		ID:        r.ID,
		Code:      r.Code,
		Name:      r.Name,
		Grade:     r.Grade,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

// codes share their prefix, so the shorter code is the smaller one
var subjectOrderExprs = map[string]string{"code": "length(code) %[1]s, code %[1]s"}

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) NextCodeSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := repo.db.GetContext(ctx, &seq, `SELECT nextval('subject_code_seq')`); err != nil {
		return 0, errors.Wrap(err, "reading subject code sequence")
	}
	return seq, nil
}

func (repo *subjectRepository) CreateOffering(ctx context.Context, off subject.Offering) (subject.Offering, error) {
	off.ID = uuid.New().String()
	row := subjectRow{
		ID:        off.ID,
		Code:      off.Code,
		Name:      off.Name,
		Grade:     off.Grade,
		CreatedAt: off.CreatedAt.UTC(),
		UpdatedAt: off.UpdatedAt.UTC(),
	}
	q := `INSERT INTO subject (` + subjectColumns + `) VALUES (:id, :code, :name, :grade, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err, "subject_code_key") {
			return subject.Offering{}, subject.ErrCodeExists
		}
		return subject.Offering{}, errors.Wrap(err, "inserting subject")
	}
	return off, nil
}

func (repo *subjectRepository) QueryOfferings(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Offering, error) {
	var (
		where = " WHERE TRUE"
		args  []interface{}
	)
	if filter != nil {
		if filter.Search != "" {
			args = append(args, "%"+escapeLike(filter.Search)+"%")
			where += fmt.Sprintf(" AND (name ILIKE $%[1]d OR code ILIKE $%[1]d)", len(args))
		}
		if filter.Grade != nil {
			args = append(args, *filter.Grade)
			where += fmt.Sprintf(" AND grade = $%d", len(args))
		}
	}

	var rows []subjectRow
	q := `SELECT ` + subjectColumns + ` FROM subject` + where + orderBy(ordering, subjectOrderExprs, "seq")
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	offerings := make([]subject.Offering, 0, len(rows))
	for _, r := range rows {
		offerings = append(offerings, r.offering())
	}
	return offerings, nil
}

func (repo *subjectRepository) GetOffering(ctx context.Context, id string) (subject.Offering, error) {
	if _, err := uuid.Parse(id); err != nil {
		return subject.Offering{}, subject.ErrNotFound
	}
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+subjectColumns+` FROM subject WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return subject.Offering{}, subject.ErrNotFound
		}
		return subject.Offering{}, errors.Wrap(err, "finding subject")
	}
	return row.offering(), nil
}

func (repo *subjectRepository) UpdateOffering(ctx context.Context, off subject.Offering) (subject.Offering, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE subject SET name = $1, grade = $2, updated_at = $3 WHERE id = $4`,
		off.Name, off.Grade, off.UpdatedAt.UTC(), off.ID)
	if err != nil {
		return subject.Offering{}, errors.Wrap(err, "updating subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return subject.Offering{}, subject.ErrNotFound
	}
	return off, nil
}

func (repo *subjectRepository) DeleteOffering(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return subject.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n == 0 {
		return subject.ErrNotFound
	}
	return nil
}

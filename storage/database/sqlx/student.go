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
	"github.com/schoolmate/backend/core/student"
)

const studentColumns = `id, account_id, name, personal_email, age, gender, grade, section,
	generated_email, generated_password, created_at, updated_at`

type studentRow struct {
	ID                string    `db:"id"`
	AccountID         string    `db:"account_id"`
	Name              string    `db:"name"`
	PersonalEmail     string    `db:"personal_email"`
	Age               int       `db:"age"`
	Gender            string    `db:"gender"`
	Grade             int       `db:"grade"`
	Section           string    `db:"section"`
	GeneratedEmail    string    `db:"generated_email"`
	GeneratedPassword string    `db:"generated_password"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func toStudentRow(prof student.Profile) studentRow {
	return studentRow{
		ID:                prof.ID,
		AccountID:         prof.AccountID,
		Name:              prof.Name,
		PersonalEmail:     prof.PersonalEmail,
		Age:               prof.Age,
		Gender:            prof.Gender,
		Grade:             prof.Grade,
		Section:           prof.Section,
		GeneratedEmail:    prof.GeneratedEmail,
		GeneratedPassword: prof.GeneratedPassword,
		CreatedAt:         prof.CreatedAt.UTC(),
		UpdatedAt:         prof.UpdatedAt.UTC(),
	}
}

func (r studentRow) profile() student.Profile {
	return student.Profile{
		ID:                r.ID,
		AccountID:         r.AccountID,
		Name:              r.Name,
		PersonalEmail:     r.PersonalEmail,
		Age:               r.Age,
		Gender:            r.Gender,
		Grade:             r.Grade,
		Section:           r.Section,
		GeneratedEmail:    r.GeneratedEmail,
		GeneratedPassword: r.GeneratedPassword,
		CreatedAt:         r.CreatedAt.UTC(),
		UpdatedAt:         r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckPersonalEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM student WHERE personal_email = $1)`, email); err != nil {
		return errors.Wrap(err, "checking personal email uniqueness")
	}
	if exists {
		return student.ErrPersonalEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateProfile(ctx context.Context, prof student.Profile) (student.Profile, error) {
	prof.ID = uuid.New().String()
	q := `INSERT INTO student (` + studentColumns + `)
		VALUES (:id, :account_id, :name, :personal_email, :age, :gender, :grade, :section,
			:generated_email, :generated_password, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toStudentRow(prof)); err != nil {
		if isUniqueViolation(err, "student_personal_email_key") {
			return student.Profile{}, student.ErrPersonalEmailExists
		}
		return student.Profile{}, errors.Wrap(err, "inserting student")
	}
	prof.Account = nil
	return prof, nil
}

func (repo *studentRepository) QueryProfiles(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Profile, error) {
	var (
		where = " WHERE TRUE"
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Search != "" {
			p := arg("%" + escapeLike(filter.Search) + "%")
			where += fmt.Sprintf(" AND (name ILIKE %[1]s OR personal_email ILIKE %[1]s OR generated_email ILIKE %[1]s)", p)
		}
		if filter.Grade != nil {
			where += " AND grade = " + arg(*filter.Grade)
		}
		if filter.Section != "" {
			where += " AND section = " + arg(filter.Section)
		}
		if filter.Gender != "" {
			where += " AND gender = " + arg(filter.Gender)
		}
	}

	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM student` + where + orderBy(ordering, nil, "seq")
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	profiles := make([]student.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.profile())
	}
	return profiles, nil
}

func (repo *studentRepository) GetProfile(ctx context.Context, id string) (student.Profile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return student.Profile{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Profile{}, student.ErrNotFound
		}
		return student.Profile{}, errors.Wrap(err, "finding student")
	}
	return row.profile(), nil
}

func (repo *studentRepository) UpdateProfile(ctx context.Context, prof student.Profile) (student.Profile, error) {
	q := `UPDATE student SET
			name = :name, age = :age, gender = :gender, grade = :grade, section = :section, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toStudentRow(prof))
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Profile{}, student.ErrNotFound
	}
	return prof, nil
}

func (repo *studentRepository) DeleteProfile(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return student.ErrNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n == 0 {
		return student.ErrNotFound
	}
	return nil
}

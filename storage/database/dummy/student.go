package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) find(id string) int {
	for i, prof := range repo.db.rows {
		if prof.ID == id {
			return i
		}
	}
	return -1
}

func (repo *studentRepository) CheckPersonalEmailUniqueness(_ context.Context, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, prof := range repo.db.rows {
		if prof.PersonalEmail == email {
			return student.ErrPersonalEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateProfile(_ context.Context, prof student.Profile) (student.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, p := range repo.db.rows {
		if p.PersonalEmail == prof.PersonalEmail {
			return student.Profile{}, student.ErrPersonalEmailExists
		}
	}
	prof.ID = uuid.New().String()
	prof.Account = nil
	row := prof
	repo.db.rows = append(repo.db.rows, &row)
	return prof, nil
}

func (repo *studentRepository) QueryProfiles(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	profiles := make([]student.Profile, 0, len(repo.db.rows))
	for _, prof := range repo.db.rows {
		if matchProfile(*prof, filter) {
			profiles = append(profiles, *prof)
		}
	}

	sortRows(profiles, ordering, func(a, b student.Profile, field string) int {
		switch field {
		case "name":
			return cmpStrings(a.Name, b.Name)
		case "age":
			return cmpInts(a.Age, b.Age)
		case "grade":
			return cmpInts(a.Grade, b.Grade)
		case "section":
			return cmpStrings(a.Section, b.Section)
		case "created_at":
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return 0
	})
	return profiles, nil
}

func matchProfile(prof student.Profile, filter *student.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Search != "" &&
		!(containsFold(prof.Name, filter.Search) ||
			containsFold(prof.PersonalEmail, filter.Search) ||
			containsFold(prof.GeneratedEmail, filter.Search)) {
		return false
	}
	if filter.Grade != nil && prof.Grade != *filter.Grade {
		return false
	}
	if filter.Section != "" && prof.Section != filter.Section {
		return false
	}
	if filter.Gender != "" && prof.Gender != filter.Gender {
		return false
	}
	return true
}

func (repo *studentRepository) GetProfile(_ context.Context, id string) (student.Profile, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.find(id); i >= 0 {
		return *repo.db.rows[i], nil
	}
	return student.Profile{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateProfile(_ context.Context, prof student.Profile) (student.Profile, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.find(prof.ID)
	if i < 0 {
		return student.Profile{}, student.ErrNotFound
	}
	row := *repo.db.rows[i]
	row.Name = prof.Name
	row.Age = prof.Age
	row.Gender = prof.Gender
	row.Grade = prof.Grade
	row.Section = prof.Section
	row.UpdatedAt = prof.UpdatedAt
	repo.db.rows[i] = &row
	return row, nil
}

func (repo *studentRepository) DeleteProfile(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.find(id)
	if i < 0 {
		return student.ErrNotFound
	}
	repo.db.rows = append(repo.db.rows[:i], repo.db.rows[i+1:]...)
	return nil
}

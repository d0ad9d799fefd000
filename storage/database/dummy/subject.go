package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/subject"
)

type subjectRepository struct {
	db *subjectTable
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db.subject}
}

func (repo *subjectRepository) find(id string) int {
	for i, off := range repo.db.rows {
		if off.ID == id {
			return i
		}
	}
	return -1
}

func (repo *subjectRepository) NextCodeSequence(_ context.Context) (int64, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.codeSeq++
	return repo.db.codeSeq, nil
}

func (repo *subjectRepository) CreateOffering(_ context.Context, off subject.Offering) (subject.Offering, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, o := range repo.db.rows {
		if o.Code == off.Code {
			return subject.Offering{}, subject.ErrCodeExists
		}
	}
	off.ID = uuid.New().String()
	row := off
	repo.db.rows = append(repo.db.rows, &row)
	return off, nil
}

func (repo *subjectRepository) QueryOfferings(_ context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	offerings := make([]subject.Offering, 0, len(repo.db.rows))
	for _, off := range repo.db.rows {
		if filter != nil {
			if filter.Search != "" && !(containsFold(off.Name, filter.Search) || containsFold(off.Code, filter.Search)) {
				continue
			}
			if filter.Grade != nil && off.Grade != *filter.Grade {
				continue
			}
		}
		offerings = append(offerings, *off)
	}

	sortRows(offerings, ordering, func(a, b subject.Offering, field string) int {
		switch field {
		case "code":
			return cmpInts(int(subject.CodeNumber(a.Code)), int(subject.CodeNumber(b.Code)))
		case "name":
			return cmpStrings(a.Name, b.Name)
		case "grade":
			return cmpInts(a.Grade, b.Grade)
		case "created_at":
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		return 0
	})
	return offerings, nil
}

func (repo *subjectRepository) GetOffering(_ context.Context, id string) (subject.Offering, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if i := repo.find(id); i >= 0 {
		return *repo.db.rows[i], nil
	}
	return subject.Offering{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateOffering(_ context.Context, off subject.Offering) (subject.Offering, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.find(off.ID)
	if i < 0 {
		return subject.Offering{}, subject.ErrNotFound
	}
	row := *repo.db.rows[i]
	row.Name = off.Name
	row.Grade = off.Grade
	row.UpdatedAt = off.UpdatedAt
	repo.db.rows[i] = &row
	return row, nil
}

func (repo *subjectRepository) DeleteOffering(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	i := repo.find(id)
	if i < 0 {
		return subject.ErrNotFound
	}
	repo.db.rows = append(repo.db.rows[:i], repo.db.rows[i+1:]...)
	return nil
}

package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/schoolmate/backend/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) find(id string) (int, *user.User) {
	for i, u := range repo.db.rows {
		if u.ID == id {
			return i, u
		}
	}
	return -1, nil
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.rows {
		if usr.Email == email && !contains(excludedIDs, usr.ID) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.rows {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	row := usr
	repo.db.rows = append(repo.db.rows, &row)
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.rows {
		if (filter.ID != "" && usr.ID == filter.ID) || (filter.ID == "" && filter.Email != "" && usr.Email == filter.Email) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsersByID(_ context.Context, ids ...string) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(ids))
	for _, usr := range repo.db.rows {
		if contains(ids, usr.ID) {
			users = append(users, *usr)
		}
	}
	return users, nil
}

func (repo *userRepository) QueryEmailsWithPrefix(_ context.Context, prefix string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	emails := make([]string, 0)
	for _, usr := range repo.db.rows {
		if strings.HasPrefix(usr.Email, prefix) {
			emails = append(emails, usr.Email)
		}
	}
	return emails, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	i, _ := repo.find(usr.ID)
	if i < 0 {
		return user.User{}, user.ErrNotFound
	}
	for _, u := range repo.db.rows {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.User{}, user.ErrEmailExists
		}
	}
	row := usr
	repo.db.rows[i] = &row
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	kept := repo.db.rows[:0]
	var cnt int
	for _, usr := range repo.db.rows {
		if contains(ids, usr.ID) {
			cnt++
			continue
		}
		kept = append(kept, usr)
	}
	repo.db.rows = kept
	return cnt, nil
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

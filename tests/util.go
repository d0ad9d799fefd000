package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/student"
	"github.com/schoolmate/backend/core/user"
)

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	student.InitValidators(validate, translator)
	user.LoadCommonPasswords(nil)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent stores an account and its Profile directly, bypassing enrollment.
func CreateStudent(
	t *testing.T,
	usrRepo user.Repository,
	repo student.Repository,
	handle string,
	np student.NewProfile,
) student.Profile {
	acc := CreateUser(t, usrRepo, np.Name, handle, student.LocalPart(handle), user.StudentRoles, true)
	now := time.Now().UTC()
	prof, err := repo.CreateProfile(context.Background(), student.Profile{
		AccountID:         acc.ID,
		Name:              np.Name,
		PersonalEmail:     np.PersonalEmail,
		Age:               np.Age,
		Gender:            np.Gender,
		Grade:             np.Grade,
		Section:           np.Section,
		GeneratedEmail:    handle,
		GeneratedPassword: student.LocalPart(handle),
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return prof
}

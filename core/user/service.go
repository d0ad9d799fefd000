package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user not found")
	ErrEmailExists = core.NewDuplicateError("email", errors.New("a user with this email already exists"))
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if a User other than excludedIDs owns email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		// CreateUser returns ErrEmailExists when the storage rejects a duplicate email.
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		QueryUsersByID(ctx context.Context, ids ...string) ([]User, error)
		// QueryEmailsWithPrefix lists the emails starting with prefix, in no particular order.
		QueryEmailsWithPrefix(ctx context.Context, prefix string) ([]string, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if err == ErrEmailExists {
			return err
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Create validates nu against the password policy and creates a staff User.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	roles := nu.Roles
	if len(roles) == 0 {
		roles = TeacherRoles
	}
	return svc.Provision(ctx, nu.Name, nu.Email, nu.Password, roles)
}

// Provision creates an active User without applying the password policy.
// Generated credentials go through here.
func (svc *Service) Provision(ctx context.Context, name, email, pwd string, roles []string) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      core.CleanString(name),
		Email:     core.CleanString(email, true /* lower */),
		IsActive:  true,
		Roles:     roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if err == ErrEmailExists {
			return User{}, err
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

// EmailExists reports whether any User logs in with email.
func (svc *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	if _, err := svc.GetByEmail(ctx, email); err != nil {
		if err == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding user by email")
	}
	return true, nil
}

func (svc *Service) EmailsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	return svc.repo.QueryEmailsWithPrefix(ctx, prefix)
}

func (svc *Service) QueryByIDs(ctx context.Context, ids ...string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	return svc.repo.QueryUsersByID(ctx, ids...)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	usr.LastLogin = &now
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword applies the password policy to data and changes the password of the User it names.
func (svc *Service) SetPassword(ctx context.Context, data ChangePassword) (User, error) {
	usr, err := svc.GetByEmail(ctx, data.Email)
	if err != nil {
		return User{}, err
	}
	data.name = usr.Name
	if err = svc.validate.Struct(data); err != nil {
		return User{}, err
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Rename changes the display name of the User with id.
func (svc *Service) Rename(ctx context.Context, id, name string) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	usr.Name = core.CleanString(name)
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Update(ctx context.Context, usr User) (User, error) {
	if err := svc.checkUniqueness(ctx, usr.Email, usr.ID); err != nil {
		return User{}, err
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// Delete removes the Users with ids. It returns ErrNotFound when none of them existed.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	cnt, err := svc.repo.DeleteUsersByID(ctx, ids...)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if cnt == 0 && len(ids) > 0 {
		return ErrNotFound
	}
	return nil
}

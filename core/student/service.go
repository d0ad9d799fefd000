package student

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/user"
)

const (
	maxHandleAttempts = 2

	enrolledTemplate = "student_enrolled"
	enrolledSubject  = "Your student account"
)

// OrderingFields lists the fields Query can order by.
var OrderingFields = []string{"name", "age", "grade", "section", "created_at"}

type (
	Repository interface {
		// CheckPersonalEmailUniqueness returns ErrPersonalEmailExists if a Profile already uses email.
		CheckPersonalEmailUniqueness(ctx context.Context, email string) error
		// CreateProfile returns ErrPersonalEmailExists when the storage rejects a duplicate personal email.
		CreateProfile(ctx context.Context, prof Profile) (Profile, error)
		// QueryProfiles returns the Profiles matching filter, in insertion order unless ordering is set.
		QueryProfiles(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error)
		GetProfile(ctx context.Context, id string) (Profile, error)
		UpdateProfile(ctx context.Context, prof Profile) (Profile, error)
		DeleteProfile(ctx context.Context, id string) error
	}

	// AccountStore is what enrollment needs from the accounts. *user.Service satisfies it.
	AccountStore interface {
		EmailsWithPrefix(ctx context.Context, prefix string) ([]string, error)
		EmailExists(ctx context.Context, email string) (bool, error)
		Provision(ctx context.Context, name, email, pwd string, roles []string) (user.User, error)
		Rename(ctx context.Context, id, name string) (user.User, error)
		QueryByIDs(ctx context.Context, ids ...string) ([]user.User, error)
		Delete(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		accounts AccountStore
		issuer   CredentialIssuer
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
		domain   string
	}
)

var _ AccountStore = (*user.Service)(nil)

func NewService(
	repo Repository,
	accounts AccountStore,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		issuer:   LocalPartIssuer{},
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
		domain:   conf.StudentHandleDomain,
	}
}

// SetCredentialIssuer replaces the issuer of initial passwords.
func (svc *Service) SetCredentialIssuer(issuer CredentialIssuer) {
	svc.issuer = issuer
}

// Enroll creates a student account with a generated login handle, then the Profile paired with it.
// If the Profile cannot be stored the account is deleted before returning.
func (svc *Service) Enroll(ctx context.Context, np NewProfile) (Enrollment, error) {
	np.Clean()
	if err := svc.validate.Struct(np); err != nil {
		return Enrollment{}, err
	}
	if err := svc.repo.CheckPersonalEmailUniqueness(ctx, np.PersonalEmail); err != nil {
		if err == ErrPersonalEmailExists {
			return Enrollment{}, err
		}
		return Enrollment{}, core.NewPersistenceError("checking personal email uniqueness", err)
	}

	acc, pwd, err := svc.provisionAccount(ctx, np.Name)
	if err != nil {
		return Enrollment{}, err
	}

	now := time.Now().UTC()
	prof, err := svc.repo.CreateProfile(ctx, Profile{
		AccountID:         acc.ID,
		Name:              np.Name,
		PersonalEmail:     np.PersonalEmail,
		Age:               np.Age,
		Gender:            np.Gender,
		Grade:             np.Grade,
		Section:           np.Section,
		GeneratedEmail:    acc.Email,
		GeneratedPassword: pwd,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		if delErr := svc.accounts.Delete(ctx, acc.ID); delErr != nil {
			svc.logger.Error(fmt.Sprintf("could not delete account %s of failed enrollment: %v", acc.ID, delErr), delErr)
			return Enrollment{}, core.NewPersistenceError(
				"creating student profile",
				errors.Errorf("%v; deleting account %s also failed: %v", err, acc.ID, delErr),
			)
		}
		if err == ErrPersonalEmailExists {
			return Enrollment{}, err
		}
		return Enrollment{}, core.NewPersistenceError("creating student profile", err)
	}
	prof.Account = &acc

	svc.sendEnrollmentEmail(prof, pwd)
	return Enrollment{Handle: acc.Email, Password: pwd, Profile: prof}, nil
}

// provisionAccount allocates the next free login handle and creates its account.
// A handle found taken, or rejected as a duplicate by the storage, moves on to the next one.
func (svc *Service) provisionAccount(ctx context.Context, name string) (user.User, string, error) {
	existing, err := svc.accounts.EmailsWithPrefix(ctx, HandlePrefix)
	if err != nil {
		return user.User{}, "", core.NewPersistenceError("listing login handles", err)
	}

	for attempt := 0; attempt < maxHandleAttempts; attempt++ {
		handle := NextHandle(existing, svc.domain, attempt)

		taken, err := svc.accounts.EmailExists(ctx, handle)
		if err != nil {
			return user.User{}, "", core.NewPersistenceError("checking login handle", err)
		}
		if taken {
			continue
		}

		pwd := svc.issuer.Issue(handle)
		acc, err := svc.accounts.Provision(ctx, name, handle, pwd, user.StudentRoles)
		if err != nil {
			if err == user.ErrEmailExists {
				continue
			}
			return user.User{}, "", core.NewPersistenceError("creating student account", err)
		}
		return acc, pwd, nil
	}
	return user.User{}, "", ErrHandleExhausted
}

type enrolledEmailData struct {
	Name     string
	Handle   string
	Password string
}

func (svc *Service) sendEnrollmentEmail(prof Profile, pwd string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: prof.Name, Address: prof.PersonalEmail}},
		Subject:      enrolledSubject,
		TemplateName: enrolledTemplate,
		TemplateData: enrolledEmailData{Name: prof.Name, Handle: prof.GeneratedEmail, Password: pwd},
	})
}

// Query returns the Profiles matching filter with their accounts populated.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Profile, error) {
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	if filter != nil {
		filter.Clean()
	}

	profiles, err := svc.repo.QueryProfiles(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	if err = svc.populateAccounts(ctx, profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (svc *Service) populateAccounts(ctx context.Context, profiles []Profile) error {
	ids := make([]string, 0, len(profiles))
	for _, prof := range profiles {
		ids = append(ids, prof.AccountID)
	}
	accounts, err := svc.accounts.QueryByIDs(ctx, ids...)
	if err != nil {
		return errors.Wrap(err, "querying student accounts")
	}

	byID := make(map[string]user.User, len(accounts))
	for _, acc := range accounts {
		byID[acc.ID] = acc
	}
	for i := range profiles {
		if acc, ok := byID[profiles[i].AccountID]; ok {
			acc := acc
			profiles[i].Account = &acc
		}
	}
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Profile, error) {
	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	profiles := []Profile{prof}
	if err = svc.populateAccounts(ctx, profiles); err != nil {
		return Profile{}, err
	}
	return profiles[0], nil
}

// Update changes the name, age, gender, grade and section of the Profile with id.
// The personal email and the login handle never change.
func (svc *Service) Update(ctx context.Context, id string, up UpdateProfile) (Profile, error) {
	orig, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return Profile{}, err
	}

	np := up.apply(orig)
	if err = svc.validate.Struct(np); err != nil {
		return Profile{}, err
	}

	prof := orig
	prof.Name = np.Name
	prof.Age = np.Age
	prof.Gender = np.Gender
	prof.Grade = np.Grade
	prof.Section = np.Section
	prof.UpdatedAt = time.Now().UTC()

	prof, err = svc.repo.UpdateProfile(ctx, prof)
	if err != nil {
		if err == ErrNotFound {
			return Profile{}, err
		}
		return Profile{}, core.NewPersistenceError("updating student profile", err)
	}

	if prof.Name != orig.Name {
		if _, err = svc.accounts.Rename(ctx, prof.AccountID, prof.Name); err != nil {
			svc.logger.Error(fmt.Sprintf("renaming account %s of student %s: %v", prof.AccountID, prof.ID, err), err)
		}
	}

	profiles := []Profile{prof}
	if err = svc.populateAccounts(ctx, profiles); err != nil {
		return Profile{}, err
	}
	return profiles[0], nil
}

// Delete removes the Profile with id, then its account.
func (svc *Service) Delete(ctx context.Context, id string) error {
	prof, err := svc.repo.GetProfile(ctx, id)
	if err != nil {
		return err
	}

	if err = svc.repo.DeleteProfile(ctx, id); err != nil {
		if err == ErrNotFound {
			return err
		}
		return core.NewPersistenceError("deleting student profile", err)
	}

	if err = svc.accounts.Delete(ctx, prof.AccountID); err != nil && err != user.ErrNotFound {
		svc.logger.Error(fmt.Sprintf("deleting account %s of student %s: %v", prof.AccountID, prof.ID, err), err)
		return &PartialDeleteError{ProfileID: prof.ID, AccountID: prof.AccountID, Err: err}
	}
	return nil
}

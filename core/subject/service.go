package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
)

var (
	ErrNotFound   = core.NewNotFoundError("subject not found")
	ErrCodeExists = core.NewDuplicateError("code", errors.New("a subject with this code already exists"))

	OrderingFields = []string{"code", "name", "grade", "created_at"}
)

type (
	Repository interface {
		// NextCodeSequence returns the next value of a sequence that never goes back, even after deletes.
		NextCodeSequence(ctx context.Context) (int64, error)
		// CreateOffering returns ErrCodeExists when the storage rejects a duplicate code.
		CreateOffering(ctx context.Context, off Offering) (Offering, error)
		QueryOfferings(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Offering, error)
		GetOffering(ctx context.Context, id string) (Offering, error)
		UpdateOffering(ctx context.Context, off Offering) (Offering, error)
		DeleteOffering(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, no NewOffering) (Offering, error) {
	no.Clean()
	if err := svc.validate.Struct(no); err != nil {
		return Offering{}, err
	}

	seq, err := svc.repo.NextCodeSequence(ctx)
	if err != nil {
		return Offering{}, core.NewPersistenceError("allocating subject code", err)
	}

	now := time.Now().UTC()
	off, err := svc.repo.CreateOffering(ctx, Offering{
		Code:      FormatCode(seq),
		Name:      no.Name,
		Grade:     no.Grade,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if err == ErrCodeExists {
			return Offering{}, err
		}
		return Offering{}, core.NewPersistenceError("creating subject", err)
	}
	return off, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Offering, error) {
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	if filter != nil {
		filter.Clean()
	}
	offerings, err := svc.repo.QueryOfferings(ctx, filter, ordering)
	return offerings, errors.Wrap(err, "querying subjects")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Offering, error) {
	return svc.repo.GetOffering(ctx, id)
}

// Update changes the name and grade of the Offering with id. Its code never changes.
func (svc *Service) Update(ctx context.Context, id string, uo UpdateOffering) (Offering, error) {
	orig, err := svc.repo.GetOffering(ctx, id)
	if err != nil {
		return Offering{}, err
	}

	no := uo.apply(orig)
	if err = svc.validate.Struct(no); err != nil {
		return Offering{}, err
	}

	off := orig
	off.Name = no.Name
	off.Grade = no.Grade
	off.UpdatedAt = time.Now().UTC()

	off, err = svc.repo.UpdateOffering(ctx, off)
	if err != nil {
		if err == ErrNotFound {
			return Offering{}, err
		}
		return Offering{}, core.NewPersistenceError("updating subject", err)
	}
	return off, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if err := svc.repo.DeleteOffering(ctx, id); err != nil {
		if err == ErrNotFound {
			return err
		}
		return core.NewPersistenceError("deleting subject", err)
	}
	return nil
}

package student

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
)

var (
	ErrNotFound            = core.NewNotFoundError("student not found")
	ErrPersonalEmailExists = core.NewDuplicateError("personalEmail", errors.New("a student with this personal email already exists"))
	ErrHandleExhausted     = core.NewConflictError("could not allocate a free login handle, please retry")
)

// PartialDeleteError is returned when a Profile was deleted but its paired account could not be.
type PartialDeleteError struct {
	ProfileID string
	AccountID string
	Err       error
}

func (err PartialDeleteError) Error() string {
	return fmt.Sprintf("student %s was deleted but its account %s was not: %v", err.ProfileID, err.AccountID, err.Err)
}

func (err PartialDeleteError) Unwrap() error {
	return err.Err
}

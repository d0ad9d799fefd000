package student

import (
	"strings"
	"time"

	"github.com/schoolmate/backend/core"
	"github.com/schoolmate/backend/core/user"
)

const (
	MinAge   = 10
	MaxAge   = 20
	MinGrade = core.MinGrade
	MaxGrade = core.MaxGrade

	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

var (
	Genders  = []string{GenderMale, GenderFemale, GenderOther}
	Sections = []string{"A", "B", "C", "D", "E"}
)

// Profile is an enrolled student. It is paired 1:1 with the user.User it logs in with.
type Profile struct {
	ID                string     `json:"id"`
	AccountID         string     `json:"accountId"`
	Account           *user.User `json:"account,omitempty"`
	Name              string     `json:"name"`
	PersonalEmail     string     `json:"personalEmail"`
	Age               int        `json:"age"`
	Gender            string     `json:"gender"`
	Grade             int        `json:"grade"`
	Section           string     `json:"section"`
	GeneratedEmail    string     `json:"generatedEmail"`
	GeneratedPassword string     `json:"-"`
	CreatedAt         time.Time  `json:"createdAt"` // UTC
	UpdatedAt         time.Time  `json:"updatedAt"` // UTC
}

// NewProfile contains information needed to enroll a student.
type NewProfile struct {
	Name          string `json:"name" validate:"required,notblank"`
	PersonalEmail string `json:"personalEmail" validate:"required,email"`
	Age           int    `json:"age" validate:"studentage"`
	Gender        string `json:"gender" validate:"required,gender"`
	Grade         int    `json:"grade" validate:"grade"`
	Section       string `json:"section" validate:"required,section"`
}

func (np *NewProfile) Clean() {
	np.Name = core.CleanString(np.Name)
	np.PersonalEmail = core.CleanString(np.PersonalEmail, true /* lower */)
	np.Gender = core.CleanString(np.Gender, true /* lower */)
	np.Section = strings.ToUpper(core.CleanString(np.Section))
}

// UpdateProfile defines what information may be provided to modify an existing Profile.
// PersonalEmail and GeneratedEmail are accepted and ignored: both are immutable.
type UpdateProfile struct {
	Name           *string `json:"name"`
	Age            *int    `json:"age"`
	Gender         *string `json:"gender"`
	Grade          *int    `json:"grade"`
	Section        *string `json:"section"`
	PersonalEmail  *string `json:"personalEmail"`
	GeneratedEmail *string `json:"generatedEmail"`
}

// apply returns the NewProfile orig becomes once up is applied to it.
func (up UpdateProfile) apply(orig Profile) NewProfile {
	np := NewProfile{
		Name:          orig.Name,
		PersonalEmail: orig.PersonalEmail,
		Age:           orig.Age,
		Gender:        orig.Gender,
		Grade:         orig.Grade,
		Section:       orig.Section,
	}
	if up.Name != nil {
		np.Name = *up.Name
	}
	if up.Age != nil {
		np.Age = *up.Age
	}
	if up.Gender != nil {
		np.Gender = *up.Gender
	}
	if up.Grade != nil {
		np.Grade = *up.Grade
	}
	if up.Section != nil {
		np.Section = *up.Section
	}
	np.Clean()
	return np
}

// QueryFilter is a conjunction of optional predicates. Zero values match everything.
type QueryFilter struct {
	// Search is a case-insensitive substring of the name, the personal email or the login handle.
	Search  string
	Grade   *int
	Section string
	Gender  string
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Section = strings.ToUpper(core.CleanString(qf.Section))
	qf.Gender = core.CleanString(qf.Gender, true /* lower */)
}

// Enrollment is the outcome of a successful enrollment.
// Password is the plaintext initial credential; it is only ever returned here.
type Enrollment struct {
	Handle   string
	Password string
	Profile  Profile
}

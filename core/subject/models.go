package subject

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/schoolmate/backend/core"
)

// CodePrefix starts every Offering code.
const CodePrefix = "SM"

// Offering is a subject taught to one grade.
type Offering struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// FormatCode returns the code of the seq-th Offering: `SM001`, `SM002`...
func FormatCode(seq int64) string {
	return fmt.Sprintf("%s%03d", CodePrefix, seq)
}

// CodeNumber returns the sequence number of code, or 0 if code was not made by FormatCode.
// Codes past SM999 grow a digit, so codes sort by CodeNumber and not as text.
func CodeNumber(code string) int64 {
	if !strings.HasPrefix(code, CodePrefix) {
		return 0
	}
	n, err := strconv.ParseInt(code[len(CodePrefix):], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// NewOffering contains information needed to create a new Offering.
type NewOffering struct {
	Name  string `json:"name" validate:"required,notblank"`
	Grade int    `json:"grade" validate:"grade"`
}

func (no *NewOffering) Clean() {
	no.Name = core.CleanString(no.Name)
}

// UpdateOffering defines what information may be provided to modify an existing Offering.
// Code is accepted and ignored.
type UpdateOffering struct {
	Name  *string `json:"name"`
	Grade *int    `json:"grade"`
	Code  *string `json:"code"`
}

func (uo UpdateOffering) apply(orig Offering) NewOffering {
	no := NewOffering{Name: orig.Name, Grade: orig.Grade}
	if uo.Name != nil {
		no.Name = *uo.Name
	}
	if uo.Grade != nil {
		no.Grade = *uo.Grade
	}
	no.Clean()
	return no
}

type QueryFilter struct {
	// Search is a case-insensitive substring of the name or the code.
	Search string
	Grade  *int
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

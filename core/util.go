package core

import (
	"fmt"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// DBOrdering is one `ORDER BY` term.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (o DBOrdering) String() string {
	if o.Ascending {
		return o.Field + " ASC"
	}
	return o.Field + " DESC"
}

// CheckOrdering rejects orderings on fields outside of allowed.
func CheckOrdering(ordering []DBOrdering, allowed ...string) error {
	for _, ord := range ordering {
		var ok bool
		for _, field := range allowed {
			if ord.Field == field {
				ok = true
				break
			}
		}
		if !ok {
			return NewValidationError(nil, FieldError{
				Field: "ordering",
				Error: fmt.Sprintf("cannot order by %q; allowed: %s", ord.Field, strings.Join(allowed, ", ")),
			})
		}
	}
	return nil
}

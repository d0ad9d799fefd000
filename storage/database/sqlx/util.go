package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/schoolmate/backend/core"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a violation of the unique constraint named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraint
}

// orderBy returns the ORDER BY clause for ordering, falling back to fallback.
// exprs maps a field to the expressions it sorts by; `%[1]s` stands for the direction.
// Fields must have been checked against an allow list beforehand.
func orderBy(ordering []core.DBOrdering, exprs map[string]string, fallback string) string {
	if len(ordering) == 0 {
		return " ORDER BY " + fallback
	}
	terms := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if expr, ok := exprs[ord.Field]; ok {
			dir := "DESC"
			if ord.Ascending {
				dir = "ASC"
			}
			terms = append(terms, fmt.Sprintf(expr, dir))
			continue
		}
		terms = append(terms, ord.String())
	}
	terms = append(terms, fallback)
	return " ORDER BY " + strings.Join(terms, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the LIKE wildcards in s.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

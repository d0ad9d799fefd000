package dummydb

import (
	"sort"
	"strings"

	"github.com/schoolmate/backend/core"
)

// sortRows stably sorts rows by ordering. Rows equal on every field keep their insertion order.
// cmp compares a and b on field: <0, 0 or >0.
func sortRows[T any](rows []T, ordering []core.DBOrdering, cmp func(a, b T, field string) int) {
	if len(ordering) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			c := cmp(rows[i], rows[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func cmpStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

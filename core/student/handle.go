package student

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HandlePrefix starts the local part of every generated login handle.
const HandlePrefix = "std_"

var handleRegex = regexp.MustCompile(`^` + HandlePrefix + `(\d+)@`)

// NextHandle returns the login handle following the highest numbered one in existing, shifted by offset.
// Gaps left by deleted accounts are never reused. The first handle is `std_00@<domain>`.
func NextHandle(existing []string, domain string, offset int) string {
	next := 0
	for _, handle := range existing {
		m := handleRegex.FindStringSubmatch(strings.ToLower(handle))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue // overflow
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%02d@%s", HandlePrefix, next+offset, domain)
}

// LocalPart returns the part of handle before `@`.
func LocalPart(handle string) string {
	if i := strings.LastIndex(handle, "@"); i >= 0 {
		return handle[:i]
	}
	return handle
}

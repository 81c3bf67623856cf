package harness

import (
	"fmt"
	"slices"
	"strings"
)

// CheckError is a failed expectation of a case.
type CheckError struct {
	Check    string
	Expected string
	Actual   string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Check, e.Expected, e.Actual)
}

// checkCase compares a case's outcome with its expectations: the count
// must match, the selection must return as many rows as the count, and
// the identifiers must match in order when listed.
func checkCase(c Case, r CaseResult) []error {
	var errs []error

	if r.Count != c.ExpectCount {
		errs = append(errs, &CheckError{
			Check:    "count",
			Expected: fmt.Sprint(c.ExpectCount),
			Actual:   fmt.Sprint(r.Count),
		})
	}

	if int64(r.Rows) != r.Count {
		errs = append(errs, &CheckError{
			Check:    "rows match count",
			Expected: fmt.Sprintf("%d rows", r.Count),
			Actual:   fmt.Sprintf("%d rows", r.Rows),
		})
	}

	if c.ExpectIDs != nil && !slices.Equal(c.ExpectIDs, r.IDs) {
		errs = append(errs, &CheckError{
			Check:    "ids",
			Expected: "[" + strings.Join(c.ExpectIDs, ", ") + "]",
			Actual:   "[" + strings.Join(r.IDs, ", ") + "]",
		})
	}

	return errs
}

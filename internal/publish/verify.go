package publish

import (
	"fmt"
	"strings"

	"github.com/surveyforge/surveyforge/internal/table"
)

// Check is one verification outcome.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// VerificationResult aggregates the read-back checks. Success is true only
// when every individual check passed.
type VerificationResult struct {
	Success bool    `json:"success"`
	Checks  []Check `json:"checks"`
}

func (r *VerificationResult) add(name string, passed bool, detail string) {
	if !passed {
		r.Success = false
	}
	r.Checks = append(r.Checks, Check{Name: name, Passed: passed, Detail: detail})
}

// Failures returns the failed checks' details joined for error text.
func (r *VerificationResult) Failures() string {
	var parts []string
	for _, c := range r.Checks {
		if !c.Passed {
			parts = append(parts, fmt.Sprintf("%s: %s", c.Name, c.Detail))
		}
	}
	return strings.Join(parts, "; ")
}

// IntegrityError is fatal: a published artifact failed its read-back check,
// and the run must halt rather than keep writing.
type IntegrityError struct {
	Dataset string
	Result  *VerificationResult
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: %s", e.Dataset, e.Result.Failures())
}

// Verify compares a read-back artifact against the source dataset. Every
// check runs even after a failure so the result lists all mismatches.
func Verify(src *table.Table, header []string, rows [][]string, structural []string) *VerificationResult {
	res := &VerificationResult{Success: true}

	res.add("row-count", len(rows) == src.NumRows(),
		fmt.Sprintf("artifact has %d rows, source has %d", len(rows), src.NumRows()))
	res.add("column-count", len(header) == src.NumColumns(),
		fmt.Sprintf("artifact has %d columns, source has %d", len(header), src.NumColumns()))

	names := src.ColumnNames()
	ordered := len(header) == len(names)
	if ordered {
		for i := range names {
			if header[i] != names[i] {
				ordered = false
				break
			}
		}
	}
	res.add("column-names", ordered,
		fmt.Sprintf("artifact columns %v, source columns %v", header, names))

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, s := range structural {
		if !present[s] {
			missing = append(missing, s)
		}
	}
	res.add("structural-columns", len(missing) == 0,
		fmt.Sprintf("missing structural columns %v", missing))

	res.add("nonzero-rows", len(rows) > 0, "artifact has zero rows")

	return res
}

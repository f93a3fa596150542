package expr

import (
	"fmt"
	"strings"
)

// Pick chooses among rows defining the same target column. The variant with
// the longest raw text wins; ties go to the first. The note is empty when a
// single row defines the column.
func Pick(raws []string, column string) (int, string) {
	if len(raws) == 0 {
		return -1, ""
	}

	best := 0
	distinct := map[string]struct{}{}

	for i, r := range raws {
		r = strings.TrimSpace(r)
		if r != "" {
			distinct[strings.ToLower(strings.Join(strings.Fields(r), " "))] = struct{}{}
		}

		if len(r) > len(strings.TrimSpace(raws[best])) {
			best = i
		}
	}

	switch {
	case len(raws) == 1:
		return best, ""
	case len(distinct) > 1:
		return best, fmt.Sprintf("NOTE: merged %d variants for target column '%s'", len(distinct), column)
	default:
		return best, fmt.Sprintf("NOTE: merged %d duplicate definitions for target column '%s'", len(raws), column)
	}
}

package mapping

import (
	"strings"

	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/match"
)

// Row is one normalized line of a mapping sheet.
type Row struct {
	// Line is the 1-based data row number (header excluded).
	Line int

	SourceTable    string
	SourceColumn   string
	SourceDatatype string
	TargetTable    string
	TargetColumn   string
	TargetDatatype string

	BusinessRule       string
	JoinClause         string
	TransformationRule string

	SourcePath string
	TargetPath string
}

// Dataset is a normalized mapping sheet.
type Dataset struct {
	Rows []Row
	// Headers records how each raw header was canonicalized.
	Headers []match.HeaderMatch
	// Lenient is true when the strict parse failed and the permissive retry was used.
	Lenient bool

	Diagnostics diagnostic.Diagnostics
}

// TargetKey is the grouping key for a target column.
func (r Row) TargetKey() string {
	return strings.ToLower(strings.TrimSpace(r.TargetColumn))
}

// Targets returns the distinct non-empty target tables in first-seen order.
func (d *Dataset) Targets() []string {
	var out []string

	seen := map[string]struct{}{}

	for _, r := range d.Rows {
		key := strings.ToLower(r.TargetTable)
		if key == "" {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, r.TargetTable)
	}

	return out
}

// SplitByTarget partitions the dataset into one dataset per target table.
// Rows without a target table belong to the closest preceding target, or the
// first target when none precedes them. A sheet with no target tables at all
// yields a single dataset.
func (d *Dataset) SplitByTarget() []*Dataset {
	targets := d.Targets()
	if len(targets) <= 1 {
		return []*Dataset{d}
	}

	index := make(map[string]int, len(targets))
	parts := make([]*Dataset, len(targets))

	for i, t := range targets {
		index[strings.ToLower(t)] = i
		parts[i] = &Dataset{Headers: d.Headers, Lenient: d.Lenient}
	}

	current := 0

	for _, r := range d.Rows {
		if i, ok := index[strings.ToLower(r.TargetTable)]; ok {
			current = i
		}

		parts[current].Rows = append(parts[current].Rows, r)
	}

	return parts
}

package match

import (
	"regexp"
	"strings"
)

// Canonical column names of a mapping sheet.
const (
	SourceSchema       = "source_schema"
	SourceTable        = "source_table"
	SourceColumn       = "source_column"
	SourceDatatype     = "source_datatype"
	SourcePath         = "source_path"
	TargetSchema       = "target_schema"
	TargetTable        = "target_table"
	TargetColumn       = "target_column"
	TargetDatatype     = "target_datatype"
	TargetPath         = "target_path"
	BusinessRule       = "business_rule"
	JoinClause         = "join_clause"
	TransformationRule = "transformation_rule"
)

// DefaultThreshold is the minimum fuzzy similarity accepted for a header.
const DefaultThreshold = 0.55

// HeaderRule describes how to recognise one canonical column.
type HeaderRule struct {
	// Canonical is the column name assigned on a match.
	Canonical string
	// Repeat, when set, is assigned to the second header that matches Pattern.
	// Sheets repeat "Table/File Name" for the source and target blocks.
	Repeat string
	// Pattern is tried first against the trimmed raw header.
	Pattern *regexp.Regexp
	// Variants are folded and compared fuzzily when no pattern matched.
	Variants []string
}

// HeaderMatch is the outcome for a single raw header.
type HeaderMatch struct {
	Raw       string
	Canonical string // empty when unmatched
	Score     float64
	Fuzzy     bool
}

// HeaderMatcher canonicalizes sheet headers.
type HeaderMatcher struct {
	rules     []HeaderRule
	folded    [][]string
	threshold float64
}

var repeatSuffix = regexp.MustCompile(`(\.\d+|__\d+)$`)

// NewHeaderMatcher creates a matcher over rules. Rule order is significant for patterns.
func NewHeaderMatcher(rules []HeaderRule, threshold float64) *HeaderMatcher {
	folded := make([][]string, len(rules))
	for i, r := range rules {
		folded[i] = append(folded[i], FoldHeader(r.Canonical))
		for _, v := range r.Variants {
			folded[i] = append(folded[i], FoldHeader(v))
		}
	}

	return &HeaderMatcher{rules: rules, folded: folded, threshold: threshold}
}

// DefaultHeaderMatcher returns a matcher for the standard mapping-sheet layout.
func DefaultHeaderMatcher() *HeaderMatcher {
	return NewHeaderMatcher(DefaultHeaderRules(), DefaultThreshold)
}

// MatchAll maps every header to a canonical name. Unmatched headers keep an
// empty Canonical. Headers matching the same repeating pattern are assigned
// Canonical then Repeat in column order.
func (m *HeaderMatcher) MatchAll(headers []string) []HeaderMatch {
	out := make([]HeaderMatch, len(headers))
	hits := make([]int, len(m.rules))

	for i, raw := range headers {
		out[i] = m.match(raw, hits)
	}

	return out
}

func (m *HeaderMatcher) match(raw string, hits []int) HeaderMatch {
	trimmed := strings.TrimSpace(raw)
	base := repeatSuffix.ReplaceAllString(trimmed, "")
	repeated := base != trimmed

	for i, r := range m.rules {
		if r.Pattern == nil || !r.Pattern.MatchString(base) {
			continue
		}

		canonical := r.Canonical
		if r.Repeat != "" && (repeated || hits[i] > 0) {
			canonical = r.Repeat
		}

		hits[i]++

		return HeaderMatch{Raw: raw, Canonical: canonical, Score: 1}
	}

	folded := FoldHeader(base)
	if folded == "" {
		return HeaderMatch{Raw: raw}
	}

	best, bestScore := -1, 0.0

	for i, variants := range m.folded {
		for _, v := range variants {
			if score := Similarity(folded, v); score > bestScore {
				best, bestScore = i, score
			}
		}
	}

	if best < 0 || bestScore < m.threshold {
		return HeaderMatch{Raw: raw, Score: bestScore}
	}

	return HeaderMatch{Raw: raw, Canonical: m.rules[best].Canonical, Score: bestScore, Fuzzy: true}
}

// DefaultHeaderRules returns the header vocabulary used by mapping sheets.
func DefaultHeaderRules() []HeaderRule {
	rx := func(s string) *regexp.Regexp { return regexp.MustCompile(`(?i)` + s) }

	return []HeaderRule{
		{Canonical: SourcePath, Pattern: rx(`^db name/incoming file path`),
			Variants: []string{"source path", "input path"}},
		{Canonical: TargetPath, Pattern: rx(`^db name/outgoing file path`),
			Variants: []string{"target path", "output path"}},
		{Canonical: SourceSchema, Repeat: TargetSchema, Pattern: rx(`^schema name.*auto`)},
		{Canonical: SourceTable, Repeat: TargetTable, Pattern: rx(`^table/file name.*auto`),
			Variants: []string{"source table", "src table", "source name", "input table"}},
		{Canonical: TargetTable, Variants: []string{"target table", "tgt table", "output table"}},
		{Canonical: TargetColumn, Pattern: rx(`^column/field name.*auto`),
			Variants: []string{"target column", "tgt column", "output column"}},
		{Canonical: SourceColumn, Pattern: rx(`^column name.*auto`),
			Variants: []string{"source column", "src column", "input column"}},
		{Canonical: SourceDatatype, Repeat: TargetDatatype, Pattern: rx(`^data type.*auto`),
			Variants: []string{"source type", "source datatype"}},
		{Canonical: TargetDatatype, Variants: []string{"target type", "target datatype", "tgt datatype"}},
		{Canonical: BusinessRule, Pattern: rx(`^business rule`),
			Variants: []string{"business rules", "rules"}},
		{Canonical: JoinClause, Pattern: rx(`^join clause`),
			Variants: []string{"join", "joins"}},
		{Canonical: TransformationRule, Pattern: rx(`^transformation rule`),
			Variants: []string{"transformation", "transformation logic", "logic"}},
	}
}

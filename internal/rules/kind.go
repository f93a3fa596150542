package rules

import "sqljob-generator/internal/common"

// Kind classifies a piece of transformation text.
type Kind int

const (
	KindUnclassified Kind = iota
	KindCase
	KindLiteral
	KindPassthrough
	KindPredicate
	KindJoin
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindUnclassified:
		return "unclassified"
	case KindCase:
		return "case"
	case KindLiteral:
		return "literal"
	case KindPassthrough:
		return "passthrough"
	case KindPredicate:
		return "predicate"
	case KindJoin:
		return "join"
	default:
		return common.UnknownStr
	}
}

// Fragment is the interpreted form of one transformation cell.
type Fragment struct {
	Kind Kind
	// SQL is the value expression, without alias.
	SQL string
	// Literal marks NULL, numeric and quoted-string expressions.
	Literal bool
	// Default is a SQL literal substituted when the value is NULL.
	Default string
	// Comments are emitted above the expression, one per line, without "--".
	Comments []string
	// Joins holds join text found inside the transformation.
	Joins []string
	// Guarded is set when the text was replaced by NULL.
	Guarded bool
	// Raw is the original cell text.
	Raw string
}

// Predicate is a resolved boolean condition with the text it came from.
type Predicate struct {
	SQL    string
	Source string
}

// BusinessRules is the interpreted form of business-rule text.
type BusinessRules struct {
	Where   []Predicate
	Qualify []Predicate
	// Notes are audit-only remarks for rules without a recoverable predicate.
	Notes []string
}

// Empty reports whether nothing was recovered.
func (b BusinessRules) Empty() bool {
	return len(b.Where) == 0 && len(b.Qualify) == 0 && len(b.Notes) == 0
}

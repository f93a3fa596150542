package joins

import (
	"strings"

	"sqljob-generator/internal/common"
)

// Type is a join type.
type Type string

const (
	Left  Type = "LEFT"
	Inner Type = "INNER"
	Right Type = "RIGHT"
	Full  Type = "FULL"
)

// ParseType maps a join modifier to a Type. Anything unrecognised is "".
func ParseType(s string) Type {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LEFT":
		return Left
	case "INNER":
		return Inner
	case "RIGHT":
		return Right
	case "FULL":
		return Full
	default:
		return ""
	}
}

// Policy decides the join type of an edge.
type Policy interface {
	// JoinType returns the type for a join to entity. Explicit is the type
	// stated in the text, or "" when none was given.
	JoinType(entity string, explicit Type) Type
}

// DefaultPolicy joins LEFT unless the text states another type, and always
// joins lookup tables LEFT so unmatched base rows are kept.
type DefaultPolicy struct {
	LookupSuffixes []string
}

// NewDefaultPolicy creates the default policy for the given lookup suffixes.
func NewDefaultPolicy(suffixes []string) DefaultPolicy {
	return DefaultPolicy{LookupSuffixes: suffixes}
}

// JoinType implements Policy.
func (p DefaultPolicy) JoinType(entity string, explicit Type) Type {
	if p.IsLookup(entity) || explicit == "" {
		return Left
	}

	return explicit
}

// IsLookup reports whether entity follows a lookup-table naming convention.
func (p DefaultPolicy) IsLookup(entity string) bool {
	name := strings.ToLower(common.LeafName(entity))

	for _, s := range p.LookupSuffixes {
		if s != "" && strings.HasSuffix(name, strings.ToLower(s)) {
			return true
		}
	}

	return false
}

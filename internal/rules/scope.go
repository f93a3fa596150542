package rules

import (
	"strings"

	"sqljob-generator/internal/alias"
	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/sqltext"
)

// Scope is the statement context needed to qualify column references.
type Scope struct {
	BaseTable string
	BaseAlias string
	Aliases   *alias.Resolver
	// Columns maps a lower-cased table name to its known lower-cased columns.
	Columns map[string]map[string]struct{}
	// StatusColumn is tested by "not active" rules. Empty means discover from Columns.
	StatusColumn string
}

// qualifier maps a qualifier found in text to the alias it must use.
// Known aliases are kept, table names become their alias, anything else is
// treated as a leaked alias and mapped to the base alias.
func (s Scope) qualifier(q string) (string, bool) {
	if s.Aliases == nil {
		return s.BaseAlias, strings.EqualFold(q, s.BaseAlias)
	}

	if _, ok := s.Aliases.Table(q); ok {
		return strings.ToLower(q), true
	}

	if a, ok := s.Aliases.Lookup(q); ok {
		return a, true
	}

	return s.BaseAlias, false
}

// rewrite qualifies every column reference in sql and reports leaked qualifiers.
func (s Scope) rewrite(sql string, diags *diagnostic.Diagnostics) string {
	return sqltext.RewriteQualifiers(sql, func(q string) string {
		a, known := s.qualifier(q)
		if !known && diags != nil {
			diags.AddWarning(diagnostic.CodeAliasLeak,
				"unknown qualifier "+q+" rewritten to "+a, "", q)
		}

		return a
	})
}

// aliasFor returns the alias of table, or the base alias for an empty table.
func (s Scope) aliasFor(table string) string {
	if table == "" || s.Aliases == nil || strings.EqualFold(common.LeafName(table), common.LeafName(s.BaseTable)) {
		return s.BaseAlias
	}

	return s.Aliases.Resolve(table)
}

// known reports whether column is a known column of table.
func (s Scope) known(table, column string) bool {
	cols, ok := s.Columns[strings.ToLower(common.LeafName(table))]
	if !ok {
		return false
	}

	_, ok = cols[strings.ToLower(column)]

	return ok
}

// statusColumn returns the configured status column, or a known base column containing "status".
func (s Scope) statusColumn() string {
	if s.StatusColumn != "" {
		return s.StatusColumn
	}

	var found string

	for col := range s.Columns[strings.ToLower(common.LeafName(s.BaseTable))] {
		if strings.Contains(col, "status") && (found == "" || col < found) {
			found = col
		}
	}

	return found
}

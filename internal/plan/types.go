package plan

import (
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/expr"
	"sqljob-generator/internal/joins"
	"sqljob-generator/internal/rules"
)

// ResolvedViewPlan is the final output of the resolution pipeline.
// It contains everything needed to assemble one view statement.
type ResolvedViewPlan struct {
	// Target is the target table name, first-seen casing.
	Target string
	// BaseTable is the entity every other source is joined to.
	BaseTable string
	// BaseAlias is the alias of BaseTable.
	BaseAlias string
	// Sources are the distinct source entities in first-seen order, base included.
	Sources []Source
	// Joins are the normalized join edges in discovery order.
	Joins []joins.Edge
	// Where and Qualify hold business-rule predicates in encounter order.
	Where   []rules.Predicate
	Qualify []rules.Predicate
	// Notes are audit-only business-rule remarks.
	Notes []string
	// Columns holds one resolved expression per distinct target column, in encounter order.
	Columns []ResolvedColumn
	// Diagnostics contains all warnings and infos from resolution.
	Diagnostics diagnostic.Diagnostics
	// Trace records interpretation decisions for the debug logs.
	Trace Trace
}

// Source is a distinct source entity.
type Source struct {
	Table   string
	Alias   string
	Columns []string
}

// ResolvedColumn is the resolved expression for one target column.
type ResolvedColumn struct {
	Expression expr.Expression
	// Lines are the sheet lines that define this column.
	Lines []int
	// Raw is the representative transformation text.
	Raw string
	// Variants is the number of rows merged into this column.
	Variants int
	// MergeNote is set when several rows define the column.
	MergeNote string
	Guarded   bool
}

// Trace records interpretation decisions.
type Trace struct {
	Joins           []string
	BusinessRules   []RuleTrace
	Transformations []TransformTrace
}

// RuleTrace records how one business-rule cell was interpreted.
type RuleTrace struct {
	Line   int
	Text   string
	Result rules.BusinessRules
}

// TransformTrace records how one transformation cell was interpreted.
type TransformTrace struct {
	Line     int
	Column   string
	Kind     rules.Kind
	Raw      string
	Fragment rules.Fragment
}

// AliasesInScope returns the aliases visible in the joined base statement.
func (p *ResolvedViewPlan) AliasesInScope() []string {
	out := []string{p.BaseAlias}
	for _, e := range p.Joins {
		out = append(out, e.Alias)
	}

	return out
}

// SourceByAlias returns the source entity bound to alias.
func (p *ResolvedViewPlan) SourceByAlias(alias string) (Source, bool) {
	for _, s := range p.Sources {
		if s.Alias == alias {
			return s, true
		}
	}

	return Source{}, false
}

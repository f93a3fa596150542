package plan

import (
	"errors"
	"fmt"
	"strings"

	"sqljob-generator/internal/alias"
	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/expr"
	"sqljob-generator/internal/joins"
	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/rules"
	"sqljob-generator/internal/sqltext"
)

// Fallback names used when a sheet does not say.
const (
	DefaultBaseTable = "source_table"
	DefaultTarget    = "target"
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// Hints pins aliases, known columns and lookup suffixes. Nil means DefaultHints.
	Hints *mapping.Hints
	// Strategies are consulted before the hint, text and synthetic alias strategies.
	Strategies []alias.Strategy
	// Policy decides join types. Nil means joins.DefaultPolicy over the hint lookup suffixes.
	Policy joins.Policy
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{Hints: mapping.DefaultHints()}
}

// Resolver performs the resolution pipeline for one target table.
type Resolver struct {
	dataset *mapping.Dataset
	config  ResolutionConfig
}

// NewResolver creates a new Resolver.
func NewResolver(dataset *mapping.Dataset, config ResolutionConfig) *Resolver {
	if config.Hints == nil {
		config.Hints = mapping.DefaultHints()
	}

	if config.Policy == nil {
		config.Policy = joins.NewDefaultPolicy(config.Hints.LookupSuffixes)
	}

	return &Resolver{dataset: dataset, config: config}
}

// Resolve runs the full resolution pipeline and returns a ResolvedViewPlan.
func (r *Resolver) Resolve() (*ResolvedViewPlan, error) {
	if r.dataset == nil {
		return nil, errors.New("mapping dataset is required")
	}

	plan := &ResolvedViewPlan{
		Target:    targetTable(r.dataset.Rows),
		BaseTable: baseEntity(r.dataset.Rows),
	}

	if plan.BaseTable == "" {
		plan.BaseTable = DefaultBaseTable
		plan.Diagnostics.AddWarning(diagnostic.CodeMissingSource,
			"no source table in sheet, using placeholder "+DefaultBaseTable, "", "")
	}

	aliases := r.newAliasResolver()
	plan.BaseAlias = aliases.Resolve(plan.BaseTable)
	plan.Sources = r.sources(aliases, plan.BaseTable)

	norm := joins.NewNormalizer(plan.BaseTable, plan.BaseAlias, aliases, r.config.Policy)
	for _, row := range r.dataset.Rows {
		norm.Add(row.JoinClause)

		for _, j := range rules.ExtractJoins(row.TransformationRule) {
			norm.Add(j)
		}
	}

	plan.Joins = norm.Edges()
	plan.Trace.Joins = norm.Notes()

	in := rules.NewInterpreter(rules.Scope{
		BaseTable:    plan.BaseTable,
		BaseAlias:    plan.BaseAlias,
		Aliases:      aliases,
		Columns:      r.knownColumns(),
		StatusColumn: r.config.Hints.StatusColumn,
	})

	r.resolveBusinessRules(plan, in)
	r.resolveColumns(plan, in)
	r.checkScope(plan)

	plan.Diagnostics.Merge(norm.Diagnostics())
	plan.Diagnostics.Merge(in.Diagnostics())
	plan.Diagnostics = plan.Diagnostics.WithTarget(plan.Target)

	return plan, nil
}

func (r *Resolver) newAliasResolver() *alias.Resolver {
	var texts []string

	for _, row := range r.dataset.Rows {
		texts = append(texts, row.JoinClause, row.TransformationRule, row.BusinessRule)
	}

	strategies := append([]alias.Strategy{}, r.config.Strategies...)
	strategies = append(strategies,
		alias.NewHintStrategy(r.config.Hints.Aliases),
		alias.NewTextStrategy(texts),
	)

	return alias.NewResolver(strategies...)
}

// sources resolves every distinct source table in first-seen order.
func (r *Resolver) sources(aliases *alias.Resolver, base string) []Source {
	var out []Source

	index := map[string]int{}

	add := func(table, column string) {
		key := strings.ToLower(common.LeafName(table))

		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Source{Table: table, Alias: aliases.Resolve(table)})
		}

		if column != "" && !containsFold(out[i].Columns, column) {
			out[i].Columns = append(out[i].Columns, column)
		}
	}

	for _, row := range r.dataset.Rows {
		if row.SourceTable != "" {
			add(row.SourceTable, row.SourceColumn)
		}
	}

	if len(out) == 0 {
		add(base, "")
	}

	return out
}

// knownColumns merges sheet columns with hinted ones, keyed by lower-cased table.
func (r *Resolver) knownColumns() map[string]map[string]struct{} {
	out := map[string]map[string]struct{}{}

	add := func(table, column string) {
		table = strings.ToLower(common.LeafName(table))
		column = strings.ToLower(strings.TrimSpace(column))

		if table == "" || column == "" {
			return
		}

		if out[table] == nil {
			out[table] = map[string]struct{}{}
		}

		out[table][column] = struct{}{}
	}

	for _, row := range r.dataset.Rows {
		add(row.SourceTable, row.SourceColumn)
	}

	for table, cols := range r.config.Hints.KnownColumns {
		for _, c := range cols {
			add(table, c)
		}
	}

	return out
}

// resolveBusinessRules interprets each distinct business-rule cell once.
func (r *Resolver) resolveBusinessRules(plan *ResolvedViewPlan, in *rules.Interpreter) {
	seenText := map[string]struct{}{}
	seenPred := map[string]struct{}{}
	seenNote := map[string]struct{}{}

	for _, row := range r.dataset.Rows {
		key := strings.ToLower(common.CollapseSpace(row.BusinessRule))
		if key == "" {
			continue
		}

		if _, ok := seenText[key]; ok {
			continue
		}

		seenText[key] = struct{}{}

		br := in.BusinessRules(row.BusinessRule)
		plan.Trace.BusinessRules = append(plan.Trace.BusinessRules, RuleTrace{Line: row.Line, Text: row.BusinessRule, Result: br})

		for _, p := range br.Where {
			if addOnce(seenPred, "w|"+strings.ToLower(p.SQL)) {
				plan.Where = append(plan.Where, p)
			}
		}

		for _, p := range br.Qualify {
			if addOnce(seenPred, "q|"+strings.ToLower(p.SQL)) {
				plan.Qualify = append(plan.Qualify, p)
			}
		}

		for _, n := range br.Notes {
			if addOnce(seenNote, n) {
				plan.Notes = append(plan.Notes, n)
			}
		}
	}
}

// resolveColumns builds one expression per distinct target column.
func (r *Resolver) resolveColumns(plan *ResolvedViewPlan, in *rules.Interpreter) {
	var order []string

	groups := map[string][]mapping.Row{}

	for _, row := range r.dataset.Rows {
		key := row.TargetKey()
		if key == "" {
			continue
		}

		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}

		groups[key] = append(groups[key], row)
	}

	for _, key := range order {
		plan.Columns = append(plan.Columns, r.resolveColumn(plan, in, groups[key]))
	}
}

func (r *Resolver) resolveColumn(plan *ResolvedViewPlan, in *rules.Interpreter, group []mapping.Row) ResolvedColumn {
	name := strings.TrimSpace(group[0].TargetColumn)

	raws := make([]string, len(group))
	lines := make([]int, len(group))
	datatype := ""

	for i, row := range group {
		raws[i] = row.TransformationRule
		lines[i] = row.Line

		if datatype == "" {
			datatype = row.TargetDatatype
		}
	}

	idx, note := expr.Pick(raws, name)
	row := group[idx]

	frag := in.Transformation(rules.Input{
		Text:           row.TransformationRule,
		SourceTable:    row.SourceTable,
		SourceColumn:   row.SourceColumn,
		TargetDatatype: datatype,
	})

	plan.Trace.Transformations = append(plan.Trace.Transformations, TransformTrace{
		Line: row.Line, Column: name, Kind: frag.Kind, Raw: row.TransformationRule, Fragment: frag,
	})

	subject := fmt.Sprintf("line %d: %s", row.Line, name)

	switch {
	case frag.Kind == rules.KindPassthrough && row.SourceColumn == "" && frag.Literal:
		plan.Diagnostics.AddWarning(diagnostic.CodeMissingSource, "no source column, NULL emitted", "", subject)
	case frag.Kind == rules.KindUnclassified && frag.Literal && !frag.Guarded:
		plan.Diagnostics.AddInfo(diagnostic.CodeUnclassified, "text kept as a string literal", "", subject)
	}

	e := expr.Build(frag, expr.Column{Name: name, Datatype: datatype})

	if note != "" {
		e.Comments = append([]string{note}, e.Comments...)
		plan.Diagnostics.AddInfo(diagnostic.CodeMergedVariants, note, "", subject)
	}

	return ResolvedColumn{
		Expression: e,
		Lines:      lines,
		Raw:        row.TransformationRule,
		Variants:   len(group),
		MergeNote:  note,
		Guarded:    frag.Guarded,
	}
}

// checkScope warns about expressions reading a source that is never joined.
func (r *Resolver) checkScope(plan *ResolvedViewPlan) {
	inScope := map[string]struct{}{}
	for _, a := range plan.AliasesInScope() {
		inScope[strings.ToLower(a)] = struct{}{}
	}

	reported := map[string]struct{}{}

	for _, c := range plan.Columns {
		for _, q := range sqltext.Qualifiers(c.Expression.SQL) {
			key := strings.ToLower(q)
			if _, ok := inScope[key]; ok {
				continue
			}

			if !addOnce(reported, key) {
				continue
			}

			plan.Diagnostics.AddWarning(diagnostic.CodeUndeclaredAlias,
				"alias "+q+" is referenced but its source is never joined", "", c.Expression.Target)
		}
	}
}

// baseEntity returns the most frequent source table, ties going to the first seen.
func baseEntity(rows []mapping.Row) string {
	counts := map[string]int{}
	first := map[string]string{}

	var order []string

	for _, row := range rows {
		if row.SourceTable == "" {
			continue
		}

		key := strings.ToLower(row.SourceTable)
		if _, ok := first[key]; !ok {
			first[key] = row.SourceTable
			order = append(order, key)
		}

		counts[key]++
	}

	best := ""

	for _, k := range order {
		if best == "" || counts[k] > counts[best] {
			best = k
		}
	}

	return first[best]
}

// targetTable returns the first non-empty target table.
func targetTable(rows []mapping.Row) string {
	for _, row := range rows {
		if row.TargetTable != "" {
			return row.TargetTable
		}
	}

	return DefaultTarget
}

func addOnce(seen map[string]struct{}, key string) bool {
	if _, ok := seen[key]; ok {
		return false
	}

	seen[key] = struct{}{}

	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}

	return false
}

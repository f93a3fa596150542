package gen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/plan"
	"sqljob-generator/internal/rules"
	"sqljob-generator/internal/sqltext"
)

// StepName is the name of the joined and filtered base CTE.
const StepName = "step1"

// statementData holds all data needed for the statement template.
type statementData struct {
	CTEs       []string
	Projection []string
	From       string
	Joins      []string
	Notes      []string
	Where      []predicateData
	Qualify    []predicateData
	Columns    []columnData
	BaseAlias  string
}

type predicateData struct {
	Number int
	Source string
	SQL    string
	First  bool
}

type columnData struct {
	Comments []string
	SQL      string
	Last     bool
}

var statementTemplate = template.Must(template.New("statement").Parse(`WITH
{{- range .CTEs}}
{{.}},
{{- end}}
step1 AS (
  SELECT {{range $i, $p := .Projection}}{{if $i}},
    {{end}}{{$p}}{{end}}
  FROM {{.From}}
{{- range .Joins}}
  {{.}}
{{- end}}
{{- range .Notes}}
  -- NOTE: {{.}}
{{- end}}
{{- if .Where}}
  WHERE
{{- template "predicates" .Where}}
{{- end}}
{{- if .Qualify}}
  QUALIFY
{{- template "predicates" .Qualify}}
{{- end}}
)
SELECT
{{- range .Columns}}
{{- range .Comments}}
  -- {{.}}
{{- end}}
  {{.SQL}}{{if not .Last}},{{end}}
{{- end}}
FROM step1 {{.BaseAlias}};
{{- define "predicates"}}
{{- range .}}
    -- Business Rule #{{.Number}}: {{.Source}}
    {{if not .First}}AND {{end}}{{.SQL}}
{{- end}}
{{- end}}
`))

// Assemble composes the view statement for a resolved plan. The result ends
// with exactly one semicolon.
func Assemble(p *plan.ResolvedViewPlan) (string, error) {
	if p == nil {
		return "", fmt.Errorf("resolved plan is required")
	}

	if len(p.Columns) == 0 {
		return "", fmt.Errorf("target %s has no columns", p.Target)
	}

	data := buildStatementData(p)

	var buf bytes.Buffer
	if err := statementTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing statement template: %w", err)
	}

	return finish(buf.String()), nil
}

func buildStatementData(p *plan.ResolvedViewPlan) statementData {
	data := statementData{BaseAlias: p.BaseAlias}

	cteBySource := map[string]string{}

	for _, s := range p.Sources {
		data.CTEs = append(data.CTEs, fmt.Sprintf("%s AS (SELECT * FROM %s %s)", s.Alias, s.Table, s.Alias))
		cteBySource[strings.ToLower(common.LeafName(s.Table))] = s.Alias
	}

	data.From = p.BaseAlias
	if _, ok := cteBySource[strings.ToLower(common.LeafName(p.BaseTable))]; !ok {
		data.From = p.BaseTable + " " + p.BaseAlias
	}

	joined := map[string]struct{}{}

	for _, e := range orderJoins(p.Joins) {
		e.On = fragment(e.On)
		data.Joins = append(data.Joins, e.Render(cteBySource[strings.ToLower(common.LeafName(e.Entity))]))
		joined[strings.ToLower(e.Alias)] = struct{}{}
	}

	for _, n := range p.Notes {
		data.Notes = append(data.Notes, commentText(n))
	}

	data.Where = predicates(p.Where, 0)
	data.Qualify = predicates(p.Qualify, len(p.Where))

	exprs := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		exprs[i] = fragment(c.Expression.SQL)
	}

	projection, exprs := project(exprs, p.BaseAlias, joined)
	data.Projection = append([]string{p.BaseAlias + ".*"}, projection...)

	for i, c := range p.Columns {
		code, hoisted := sqltext.SplitComments(exprs[i])

		var comments []string
		for _, cm := range append(append([]string{}, c.Expression.Comments...), hoisted...) {
			comments = append(comments, commentText(cm))
		}

		c.Expression.SQL = code
		data.Columns = append(data.Columns, columnData{
			Comments: comments,
			SQL:      c.Expression.Render(),
			Last:     i == len(p.Columns)-1,
		})
	}

	return data
}

// project makes columns of joined aliases visible after step1: every
// "alias.col" read by a final expression is selected in step1 as
// "alias__col" and the expression reads it through the base alias instead.
func project(exprs []string, base string, joined map[string]struct{}) ([]string, []string) {
	var projection []string

	seen := map[string]struct{}{}
	out := make([]string, len(exprs))

	for i, e := range exprs {
		var b strings.Builder

		last := 0

		for _, r := range sqltext.References(e) {
			if _, ok := joined[strings.ToLower(r.Qualifier)]; !ok {
				continue
			}

			name := strings.ToLower(r.Qualifier) + "__" + r.Column
			if _, ok := seen[strings.ToLower(name)]; !ok {
				seen[strings.ToLower(name)] = struct{}{}
				projection = append(projection, r.Qualifier+"."+r.Column+" AS "+name)
			}

			b.WriteString(e[last:r.Start])
			b.WriteString(base + "." + name)
			last = r.End
		}

		b.WriteString(e[last:])
		out[i] = b.String()
	}

	return projection, out
}

// predicates numbers business-rule predicates from offset+1, matching the audit report.
func predicates(ps []rules.Predicate, offset int) []predicateData {
	out := make([]predicateData, 0, len(ps))

	for i, p := range ps {
		out = append(out, predicateData{
			Number: offset + i + 1,
			Source: commentText(p.Source),
			SQL:    parenthesize(fragment(p.SQL)),
			First:  i == 0,
		})
	}

	return out
}

// fragment collapses whitespace outside strings and drops stray semicolons.
func fragment(sql string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(sqltext.Collapse(sql)), ";"))
}

// parenthesize wraps predicates with a top-level OR so AND-combining keeps their meaning.
func parenthesize(pred string) string {
	if sqltext.IndexTopLevel(pred, "OR") >= 0 {
		return "(" + pred + ")"
	}

	return pred
}

// commentText makes text safe for a single "--" line.
func commentText(s string) string {
	return common.CollapseSpace(strings.TrimPrefix(strings.TrimSpace(s), "--"))
}

// finish trims trailing blanks on every line and terminates the statement with one semicolon.
func finish(sql string) string {
	lines := strings.Split(sql, "\n")
	out := lines[:0]

	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l != "" {
			out = append(out, l)
		}
	}

	body := strings.TrimRight(strings.Join(out, "\n"), "; \n")

	return body + ";\n"
}

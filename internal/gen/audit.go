package gen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/plan"
	"sqljob-generator/internal/validate"
)

type auditData struct {
	Target      string
	Malcode     string
	Base        string
	Sources     string
	JoinCount   int
	Columns     []auditColumn
	Rules       []auditRule
	Notes       []string
	Warnings    []string
	Changes     []string
	Diagnostics []string
}

type auditColumn struct {
	Number     int
	Target     string
	Lines      string
	Raw        string
	Expression string
	Notes      string
}

type auditRule struct {
	Number    int
	Clause    string
	Text      string
	Predicate string
}

var auditTemplate = template.Must(template.New("audit").Parse(`# Audit report: {{.Target}}

- Source malcode: {{.Malcode}}
- Base entity: {{.Base}}
- Sources: {{.Sources}}
- Joins: {{.JoinCount}}
- Columns: {{len .Columns}}

## Columns

| # | Target column | Lines | Raw transformation | SQL expression | Notes |
|---|---|---|---|---|---|
{{range .Columns}}| {{.Number}} | {{.Target}} | {{.Lines}} | {{.Raw}} | {{.Expression}} | {{.Notes}} |
{{end}}
## Business rules
{{if .Rules}}
| # | Clause | Rule text | Predicate |
|---|---|---|---|
{{range .Rules}}| {{.Number}} | {{.Clause}} | {{.Text}} | {{.Predicate}} |
{{end}}{{else}}
No predicates recovered.
{{end}}{{if .Notes}}
### Audit-only rules

{{range .Notes}}- {{.}}
{{end}}{{end}}
## Validator
{{if or .Warnings .Changes}}
{{range .Warnings}}- warning: {{.}}
{{end}}{{range .Changes}}- fixed: {{.}}
{{end}}{{else}}
No structural issues found.
{{end}}{{if .Diagnostics}}
## Diagnostics

{{range .Diagnostics}}- {{.}}
{{end}}{{end}}`))

// Audit renders the markdown audit report for a plan and its validated statement.
func Audit(p *plan.ResolvedViewPlan, malcode string, res validate.Result) ([]byte, error) {
	data := auditData{
		Target:    p.Target,
		Malcode:   malcode,
		Base:      p.BaseTable + " (" + p.BaseAlias + ")",
		JoinCount: len(p.Joins),
		Notes:     p.Notes,
		Warnings:  res.Warnings,
		Changes:   res.Changes,
	}

	sources := make([]string, len(p.Sources))
	for i, s := range p.Sources {
		sources[i] = s.Table + " (" + s.Alias + ")"
	}

	data.Sources = strings.Join(sources, ", ")

	for i, c := range p.Columns {
		lines := make([]string, len(c.Lines))
		for j, l := range c.Lines {
			lines[j] = strconv.Itoa(l)
		}

		var notes []string
		if c.MergeNote != "" {
			notes = append(notes, c.MergeNote)
		}

		if c.Guarded {
			notes = append(notes, "guarded: unresolved expression replaced by NULL")
		}

		for _, cm := range c.Expression.Comments {
			if cm != c.MergeNote {
				notes = append(notes, cm)
			}
		}

		data.Columns = append(data.Columns, auditColumn{
			Number:     i + 1,
			Target:     cell(c.Expression.Target),
			Lines:      strings.Join(lines, ", "),
			Raw:        cell(c.Raw),
			Expression: code(c.Expression.SQL),
			Notes:      cell(strings.Join(notes, "; ")),
		})
	}

	for _, w := range p.Where {
		data.Rules = append(data.Rules, auditRule{
			Number: len(data.Rules) + 1, Clause: "WHERE", Text: cell(w.Source), Predicate: code(w.SQL),
		})
	}

	for _, q := range p.Qualify {
		data.Rules = append(data.Rules, auditRule{
			Number: len(data.Rules) + 1, Clause: "QUALIFY", Text: cell(q.Source), Predicate: code(q.SQL),
		})
	}

	diags := p.Diagnostics
	for _, group := range [][]string{diagStrings(diags.Errors), diagStrings(diags.Warnings), diagStrings(diags.Infos)} {
		data.Diagnostics = append(data.Diagnostics, group...)
	}

	var buf bytes.Buffer
	if err := auditTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing audit template: %w", err)
	}

	return buf.Bytes(), nil
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	return strings.ReplaceAll(s, "\n", "<br>")
}

func code(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	return "`" + strings.ReplaceAll(cell(s), "`", "'") + "`"
}

func diagStrings(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Severity.String() + ": " + cell(d.String())
	}

	return out
}

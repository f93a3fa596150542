package rules

import (
	"regexp"
	"strings"

	"github.com/xwb1989/sqlparser"

	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/sqltext"
)

var (
	bulletRx     = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*`)
	inlineEnumRx = regexp.MustCompile(`\s+\d+\)\s+`)
	duplicateRx  = regexp.MustCompile(`(?i)\bduplicates?\b`)
	spacesRx     = regexp.MustCompile(`(?i)\ball\s*spaces\b|\bblanks?\b|\bwhitespace\b|\bspaces\s+only\b`)
	inactiveRx   = regexp.MustCompile(`(?i)\bnot\s+active\b|\binactive\b`)
	compareRx    = regexp.MustCompile(`(?i)\b([A-Za-z_]\w*)\.([A-Za-z_]\w*)\s*(<>|!=|=)\s*('(?:[^']|'')*'|-?\d+(?:\.\d+)?)`)
	rejectRx     = regexp.MustCompile(`(?i)\b(?:reject\w*|exclud\w*|drop|remove|filter\s+out|skip|ignore)\b`)
	keepRx       = regexp.MustCompile(`(?i)\b(?:keep|only|include|retain)\b`)
	rejectNoteRx = regexp.MustCompile(`(?i)\breject the record\b`)
	excludeRx    = regexp.MustCompile(`(?i)\bexclude the record\b`)
)

// BusinessRules interprets business-rule text into predicates and notes.
func (in *Interpreter) BusinessRules(text string) BusinessRules {
	var out BusinessRules

	for _, item := range splitItems(text) {
		in.businessItem(item, &out)
	}

	return out
}

// splitItems splits text on lines and inline "1) ... 2) ..." enumerations and strips bullets.
func splitItems(text string) []string {
	text = noiseRx.ReplaceAllString(text, "")

	var items []string

	for _, line := range strings.Split(text, "\n") {
		for _, part := range inlineEnumRx.Split(line, -1) {
			part = strings.TrimSpace(bulletRx.ReplaceAllString(part, ""))
			if part != "" {
				items = append(items, part)
			}
		}
	}

	return items
}

func (in *Interpreter) businessItem(line string, out *BusinessRules) {
	refs := sqltext.References(line)
	reject := rejectRx.MatchString(line)

	switch {
	case duplicateRx.MatchString(line) && len(refs) > 0:
		col := in.column(refs[0])
		out.Qualify = append(out.Qualify, Predicate{
			SQL:    "ROW_NUMBER() OVER (PARTITION BY " + col + " ORDER BY " + col + ") = 1",
			Source: line,
		})
	case spacesRx.MatchString(line) && len(refs) > 0:
		out.Where = append(out.Where, Predicate{SQL: "TRIM(" + in.column(refs[0]) + ") <> ''", Source: line})
	case compareRx.MatchString(line):
		m := compareRx.FindStringSubmatch(line)
		col := in.column(sqltext.Ref{Qualifier: m[1], Column: m[2]})
		op := m[3]

		// A bare "<>" names the records to drop; a bare "=" names the ones to keep.
		switch {
		case op == "=":
			if reject {
				op = invert(op)
			}
		case reject || !keepRx.MatchString(line):
			op = invert(op)
		}

		out.Where = append(out.Where, Predicate{SQL: col + " " + op + " " + m[4], Source: line})
	case inactiveRx.MatchString(line):
		if status := in.scope.statusColumn(); status != "" {
			out.Where = append(out.Where, Predicate{SQL: in.scope.BaseAlias + "." + status + " = 'A'", Source: line})
			return
		}

		in.note(out, "Status rule -> "+line)
	case len(refs) > 0 && in.sqlPredicate(line, refs[0], reject, out):
	case rejectNoteRx.MatchString(line):
		in.note(out, "Evaluate rule -> "+line)
	case excludeRx.MatchString(line) || reject:
		in.note(out, "Exclusion rule -> "+line)
	default:
		in.note(out, "Business rule -> "+line)
	}
}

// sqlPredicate keeps a line that parses as a WHERE condition from its first column reference on.
func (in *Interpreter) sqlPredicate(line string, first sqltext.Ref, reject bool, out *BusinessRules) bool {
	cond := strings.TrimSpace(strings.TrimRight(line[first.Start:], ". ;"))
	if !predicateRx.MatchString(cond) {
		return false
	}

	if _, err := sqlparser.Parse("SELECT 1 FROM t WHERE " + cond); err != nil {
		return false
	}

	sql := in.scope.rewrite(sqltext.Collapse(cond), &in.diags)
	if reject {
		sql = "NOT (" + sql + ")"
	}

	out.Where = append(out.Where, Predicate{SQL: sql, Source: line})

	return true
}

func (in *Interpreter) column(r sqltext.Ref) string {
	a, known := in.scope.qualifier(r.Qualifier)
	if !known {
		in.diags.AddWarning(diagnostic.CodeAliasLeak,
			"unknown qualifier "+r.Qualifier+" rewritten to "+a, "", r.Qualifier+"."+r.Column)
	}

	return a + "." + r.Column
}

func (in *Interpreter) note(out *BusinessRules, text string) {
	out.Notes = append(out.Notes, text)
	in.diags.AddInfo(diagnostic.CodeAuditOnlyRule, "business rule kept as audit note", "", text)
}

// invert negates an equality comparison.
func invert(op string) string {
	if op == "=" {
		return "<>"
	}

	return "="
}

package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zeebo/xxh3"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/sqltext"
)

// MissingOnComment flags a join that had no recoverable condition.
const MissingOnComment = "-- FIXME: join condition missing"

// Result is the outcome of validating one statement.
type Result struct {
	SQL      string
	Warnings []string
	Changes  []string
}

// Diagnostics converts the result into diagnostics.
func (r Result) Diagnostics() diagnostic.Diagnostics {
	var d diagnostic.Diagnostics

	for _, w := range r.Warnings {
		d.AddWarning("sql_validation", w, "", "")
	}

	for _, c := range r.Changes {
		d.AddInfo("sql_repair", c, "", "")
	}

	return d
}

var joinLineRx = regexp.MustCompile(`(?i)^\s*(?:(?:left|right|full|inner|cross)\s+(?:outer\s+)?)?join\s+([A-Za-z0-9_.]+)(?:\s+(?:as\s+)?([A-Za-z_]\w*))?`)

// Check validates sql and returns the repaired statement.
func Check(sql string) Result {
	var res Result

	lines := strings.Split(sql, "\n")
	lines = res.dedupeJoins(lines)
	lines = res.fixMissingOn(lines)
	res.SQL = res.balance(strings.Join(lines, "\n"))

	b := sqltext.Measure(res.SQL)
	if b.Case != 0 {
		res.warn("CASE/END mismatch: %+d", b.Case)
	}

	if b.Paren != 0 {
		res.warn("unbalanced parentheses: %+d", b.Paren)
	}

	if b.Unterminated {
		res.warn("unterminated string literal")
	}

	declared := res.checkAliases(res.SQL)

	seen := map[string]struct{}{}

	for _, r := range sqltext.References(res.SQL) {
		key := strings.ToLower(r.Qualifier)
		if _, ok := declared[key]; ok {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		res.warn("undeclared alias %s in %s.%s", r.Qualifier, r.Qualifier, r.Column)
	}

	return res
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) change(format string, args ...any) {
	r.Changes = append(r.Changes, fmt.Sprintf(format, args...))
}

// balance closes open CASE blocks and parentheses before the terminal ";"
// and trims surplus trailing ")". Text with an unterminated string is left alone.
func (r *Result) balance(sql string) string {
	body := strings.TrimRight(sql, " \t\r\n")
	tail := sql[len(body):]

	term := ""
	if strings.HasSuffix(body, ";") {
		body = strings.TrimRight(strings.TrimSuffix(body, ";"), " \t\r\n")
		term = ";"
	}

	b := sqltext.Measure(body)
	if b.Unterminated {
		return sql
	}

	last := body[strings.LastIndex(body, "\n")+1:]
	toks := sqltext.Tokens(last)
	commented := len(toks) > 0 && toks[len(toks)-1].IsComment()

	changed := false

	for b.Paren < 0 && !commented && strings.HasSuffix(body, ")") {
		body = strings.TrimRight(strings.TrimSuffix(body, ")"), " \t")
		b.Paren++
		changed = true

		r.change("removed surplus ')' at end of statement")
	}

	var closing string

	if b.Case > 0 {
		closing += strings.Repeat(" END", b.Case)
		r.change("appended %d missing END", b.Case)
	}

	if b.Paren > 0 {
		closing += strings.Repeat(")", b.Paren)
		r.change("appended %d missing ')'", b.Paren)
	}

	switch {
	case closing == "":
	case commented:
		body += "\n" + strings.TrimSpace(closing)
		changed = true
	default:
		body += closing
		changed = true
	}

	if !changed {
		return sql
	}

	return body + term + tail
}

// joinKey identifies a join line by target table and ON clause, ignoring alias, case and spacing.
func joinKey(line string) (uint64, bool, bool) {
	m := joinLineRx.FindStringSubmatch(line)
	if m == nil {
		return 0, false, false
	}

	on := ""
	if i := sqltext.IndexTopLevel(line, "ON"); i >= 0 {
		code, _ := sqltext.SplitComments(line[i:])
		on = sqltext.RewriteQualifiers(code, func(q string) string {
			if strings.EqualFold(q, m[2]) || strings.EqualFold(q, common.LeafName(m[1])) {
				return "_"
			}

			return q
		})
	}

	key := strings.ToLower(m[1] + "|" + strings.Join(strings.Fields(on), " "))
	hasAlias := m[2] != "" && !strings.EqualFold(m[2], "on")

	return xxh3.HashString(key), hasAlias, true
}

// dedupeJoins drops repeated join lines, keeping the first one that carries an alias.
func (r *Result) dedupeJoins(lines []string) []string {
	keeper := map[uint64]int{}

	for i, l := range lines {
		k, aliased, ok := joinKey(l)
		if !ok {
			continue
		}

		j, seen := keeper[k]
		if !seen {
			keeper[k] = i
			continue
		}

		if _, firstAliased, _ := joinKey(lines[j]); !firstAliased && aliased {
			keeper[k] = i
		}
	}

	out := make([]string, 0, len(lines))

	for i, l := range lines {
		if k, _, ok := joinKey(l); ok && keeper[k] != i {
			r.change("dropped duplicate join: %s", strings.TrimSpace(l))
			continue
		}

		out = append(out, l)
	}

	return out
}

// fixMissingOn adds ON 1=1 to join lines without a condition. CROSS JOIN is left alone.
func (r *Result) fixMissingOn(lines []string) []string {
	for i, l := range lines {
		if !joinLineRx.MatchString(l) || sqltext.ContainsWord(l, "CROSS") {
			continue
		}

		if sqltext.IndexTopLevel(l, "ON", "USING") >= 0 {
			continue
		}

		code, _ := sqltext.SplitComments(l)
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		lines[i] = indent + code + " ON 1=1 " + MissingOnComment

		r.change("added ON 1=1 to: %s", strings.TrimSpace(code))
	}

	return lines
}

// checkAliases collects declared aliases and CTE names and warns when an
// alias is declared twice in one SELECT scope.
func (r *Result) checkAliases(sql string) map[string]struct{} {
	declared := map[string]struct{}{}
	scopes := map[string]string{} // scope|alias -> table

	toks := sqltext.Tokens(sql)
	stack := []int{0}
	next := 1

	for i, t := range toks {
		switch {
		case t.Text == "(":
			stack = append(stack, next)
			next++

			if i >= 2 && toks[i-1].Is("AS") && toks[i-2].IsWord() {
				declared[strings.ToLower(toks[i-2].Text)] = struct{}{}
			}
		case t.Text == ")":
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case (t.Is("FROM") || t.Is("JOIN")) && i+1 < len(toks) && toks[i+1].IsWord():
			table := toks[i+1].Text
			alias := table

			switch {
			case i+3 < len(toks) && toks[i+2].Is("AS") && toks[i+3].IsWord():
				alias = toks[i+3].Text
			case i+2 < len(toks) && toks[i+2].IsWord() && !isClauseWord(toks[i+2]):
				alias = toks[i+2].Text
			}

			key := fmt.Sprintf("%d|%s", stack[len(stack)-1], strings.ToLower(alias))
			if prev, ok := scopes[key]; ok {
				r.warn("alias %s declared twice (%s, %s)", alias, prev, table)
			}

			scopes[key] = table
			declared[strings.ToLower(alias)] = struct{}{}
			declared[strings.ToLower(table)] = struct{}{}
		}
	}

	return declared
}

func isClauseWord(t sqltext.Token) bool {
	for _, w := range []string{"ON", "USING", "WHERE", "LEFT", "RIGHT", "FULL", "INNER", "CROSS", "JOIN", "GROUP", "ORDER", "QUALIFY", "HAVING", "UNION", "LIMIT", "AS"} {
		if t.Is(w) {
			return true
		}
	}

	return false
}

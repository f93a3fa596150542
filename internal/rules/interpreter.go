package rules

import (
	"regexp"
	"strings"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/sqltext"
)

var (
	noiseRx         = regexp.MustCompile(`(?i)\blog an exception[^\n]*`)
	caseStartRx     = regexp.MustCompile(`(?i)^case\b`)
	setNullIfRx     = regexp.MustCompile(`(?i)\bset\s+to\s+null\s+if\b`)
	joinOnlyRx      = regexp.MustCompile(`(?i)^(?:(?:left|right|full|inner|cross)\s+(?:outer\s+)?)?join\s+\S+`)
	withJoinRx      = regexp.MustCompile(`(?i)^[A-Za-z0-9_.]+(?:\s+[A-Za-z_]\w*)?\s+with\s+[A-Za-z0-9_.]+.*\bon\b`)
	fromJoinRx      = regexp.MustCompile(`(?is)^from\s+\S+.*\bjoin\b`)
	straightMoveRx  = regexp.MustCompile(`(?i)\bstraight\s*-?\s*move\b|\bdirect\s+(?:move|map)\b|\bmove\s+as\s+is\b`)
	blankDefaultRx  = regexp.MustCompile(`(?i)\b(?:if|when)\s+(?:blank|empty|null|missing|spaces?)\W+(?:then\s+)?(?:use|set(?:\s+to)?|assign|default(?:\s+to)?|pass|then)\s+('[^']*'|"[^"]*"|[-\w.]+)`)
	columnRefRx     = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?$`)
	setRx           = regexp.MustCompile(`(?is)\bset\b.*\bto\b`)
	currentTsRx     = regexp.MustCompile(`(?i)\bcurrent[_ ]timestamp\b`)
	effectiveDateRx = regexp.MustCompile(`(?i)\betl\.effective\.start\.date\b`)
	isoDateRx       = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	nullRx          = regexp.MustCompile(`(?i)^null$`)
	predicateRx     = regexp.MustCompile(`(?i)^[A-Za-z_][\w.]*\s*(?:=|<>|!=|<=|>=|<|>|\bis\b|\bin\b|\blike\b|\bbetween\b)`)
	funcCallRx      = regexp.MustCompile(`\b[A-Za-z_]\w*\s*\(`)
	suspiciousRx    = regexp.MustCompile(`(?is)string_agg\s*\(\s*format\s*\(\s*ascii\s*\(`)
	dateTextRx      = regexp.MustCompile(`(?i)yyyy[-/]mm[-/]dd|\bdate\s*field\b`)
	dateTypeRx      = regexp.MustCompile(`(?i)^date\b`)
)

// EffectiveDateExpr is the job-parameter expression for the ETL effective start date.
const EffectiveDateExpr = `TO_DATE('"""${etl.effective.start.date}"""', 'yyyyMMddHHmmss')`

// Input is a single transformation cell with its row context.
type Input struct {
	Text           string
	SourceTable    string
	SourceColumn   string
	TargetDatatype string
}

// Interpreter turns sheet text into SQL fragments.
type Interpreter struct {
	scope Scope
	diags diagnostic.Diagnostics
}

// NewInterpreter creates an interpreter for one statement.
func NewInterpreter(scope Scope) *Interpreter {
	return &Interpreter{scope: scope}
}

// Diagnostics returns what was recorded while interpreting.
func (in *Interpreter) Diagnostics() diagnostic.Diagnostics {
	return in.diags
}

// clean drops "log an exception" noise, splits off developer comments and collapses whitespace.
func clean(text string) (string, []string) {
	text = noiseRx.ReplaceAllString(text, "")
	code, comments := sqltext.SplitComments(text)

	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(code), ";")), comments
}

// Classify returns the Kind of a transformation text.
func (in *Interpreter) Classify(text string) Kind {
	code, _ := clean(text)

	return in.classify(code, "")
}

func (in *Interpreter) classify(code, sourceTable string) Kind {
	switch {
	case code == "":
		return KindPassthrough
	case caseStartRx.MatchString(code) || setNullIfRx.MatchString(code):
		return KindCase
	case isJoinText(code):
		return KindJoin
	case straightMoveRx.MatchString(code) || blankDefaultRx.MatchString(code):
		return KindPassthrough
	case columnRefRx.MatchString(code) && (strings.Contains(code, ".") || in.scope.known(sourceTable, code)):
		return KindPassthrough
	case setRx.MatchString(code) || currentTsRx.MatchString(code) || effectiveDateRx.MatchString(code) || nullRx.MatchString(code):
		return KindLiteral
	case isoDateRx.MatchString(code) && !isSQL(code):
		return KindLiteral
	case predicateRx.MatchString(code):
		return KindPredicate
	default:
		return KindUnclassified
	}
}

// Transformation interprets one transformation cell.
func (in *Interpreter) Transformation(input Input) Fragment {
	code, comments := clean(input.Text)
	kind := in.classify(code, input.SourceTable)

	var f Fragment

	switch kind {
	case KindCase:
		f = in.caseBlock(code, input)
	case KindJoin:
		f = in.joinOnly(code, input)
	case KindPassthrough:
		f = in.passthrough(code, input)
	case KindLiteral:
		f = literal(code)
	case KindPredicate:
		f = Fragment{SQL: in.scope.rewrite(sqltext.Collapse(code), &in.diags)}
	default:
		f = in.unclassified(code, input)
	}

	f.Kind = kind
	f.Raw = input.Text
	f.Comments = append(f.Comments, comments...)

	return f
}

// ExtractJoins returns the join text embedded in a transformation cell without interpreting it.
func ExtractJoins(text string) []string {
	code, _ := clean(text)
	if code == "" {
		return nil
	}

	if isJoinText(code) {
		return []string{code}
	}

	if _, ctx := splitContext(code); ctx != "" && sqltext.ContainsWord(ctx, "JOIN", "WITH") {
		return []string{ctx}
	}

	return nil
}

func isJoinText(code string) bool {
	return joinOnlyRx.MatchString(code) || withJoinRx.MatchString(code) || fromJoinRx.MatchString(code)
}

// splitContext cuts trailing FROM/JOIN text off an expression.
func splitContext(code string) (string, string) {
	cut := sqltext.IndexTopLevel(code, "FROM")
	if j := sqltext.IndexTopLevel(code, "JOIN"); j >= 0 && (cut < 0 || j < cut) {
		cut = joinStart(code, j)
	}

	if cut <= 0 {
		return code, ""
	}

	return strings.TrimSpace(code[:cut]), strings.TrimSpace(code[cut:])
}

var joinModifierRx = regexp.MustCompile(`(?i)(?:\b(?:left|right|full|inner|cross)\s+(?:outer\s+)?)$`)

// joinStart moves a JOIN offset back over its LEFT/INNER/... modifiers.
func joinStart(code string, j int) int {
	prefix := strings.TrimRight(code[:j], " ")
	if loc := joinModifierRx.FindStringIndex(prefix + " "); loc != nil {
		return loc[0]
	}

	return j
}

func (in *Interpreter) caseBlock(code string, input Input) Fragment {
	if setNullIfRx.MatchString(code) && !caseStartRx.MatchString(code) {
		if input.SourceColumn == "" {
			return missingSource(code)
		}

		src := in.sourceRef(input)

		return Fragment{SQL: "CASE WHEN " + src + " IS NULL OR TRIM(" + src + ") = '' THEN NULL ELSE " + src + " END"}
	}

	core, ctx := splitContext(code)

	var f Fragment

	if ctx != "" {
		f.Comments = append(f.Comments, "Source context preserved: "+common.CollapseSpace(ctx))
		if sqltext.ContainsWord(ctx, "JOIN", "WITH") {
			f.Joins = append(f.Joins, ctx)
		}
	}

	if sqltext.Measure(core).Unterminated {
		return in.guard(core, f)
	}

	f.SQL = in.scope.rewrite(sqltext.Collapse(core), &in.diags)

	return f
}

func (in *Interpreter) joinOnly(code string, input Input) Fragment {
	f := Fragment{Joins: []string{code}, Comments: []string{"join logic moved to FROM clause"}}

	if input.SourceColumn == "" {
		f.SQL, f.Literal = "NULL", true
		return f
	}

	f.SQL = in.sourceRef(input)

	return f
}

func (in *Interpreter) passthrough(code string, input Input) Fragment {
	var f Fragment

	if m := blankDefaultRx.FindStringSubmatch(code); m != nil {
		f.Default = defaultLiteral(m[1])
	}

	if columnRefRx.MatchString(code) && !straightMoveRx.MatchString(code) {
		if strings.Contains(code, ".") {
			f.SQL = in.scope.rewrite(code, &in.diags)
		} else {
			f.SQL = in.scope.aliasFor(input.SourceTable) + "." + code
		}

		return f
	}

	if input.SourceColumn == "" {
		g := missingSource(code)
		g.Default = f.Default

		return g
	}

	f.SQL = in.sourceRef(input)

	if straightMoveRx.MatchString(code) && (dateTypeRx.MatchString(input.TargetDatatype) || dateTextRx.MatchString(code)) {
		f.SQL = "TO_DATE(" + f.SQL + ", 'yyyy-MM-dd')"
	}

	return f
}

func (in *Interpreter) unclassified(code string, input Input) Fragment {
	if !isSQL(code) {
		return Fragment{SQL: sqltext.QuoteString(common.CollapseSpace(code)), Literal: true}
	}

	core, ctx := splitContext(code)

	var f Fragment

	if ctx != "" {
		f.Comments = append(f.Comments, "Source context preserved: "+common.CollapseSpace(ctx))
		if sqltext.ContainsWord(ctx, "JOIN", "WITH") {
			f.Joins = append(f.Joins, ctx)
		}
	}

	b := sqltext.Measure(core)
	if suspiciousRx.MatchString(core) || b.Unterminated || b.Paren < 0 || b.Case < 0 || core == "" {
		return in.guard(code, f)
	}

	f.SQL = in.scope.rewrite(sqltext.Collapse(core), &in.diags)

	return f
}

// guard replaces unusable SQL with NULL and keeps the text as a comment.
func (in *Interpreter) guard(code string, f Fragment) Fragment {
	text := common.CollapseSpace(code)
	if len(text) > 120 {
		text = text[:117] + "..."
	}

	in.diags.AddWarning(diagnostic.CodeGuarded, "unresolved expression replaced by NULL", "", text)

	f.SQL, f.Literal, f.Guarded = "NULL", true, true
	f.Comments = append(f.Comments, "unresolved expression guarded: "+text)
	f.Joins = nil

	return f
}

func (in *Interpreter) sourceRef(input Input) string {
	return in.scope.aliasFor(input.SourceTable) + "." + input.SourceColumn
}

func missingSource(code string) Fragment {
	return Fragment{
		SQL:      "NULL",
		Literal:  true,
		Comments: []string{"no source column for: " + common.CollapseSpace(code)},
	}
}

// isSQL reports whether text reads as SQL rather than prose.
func isSQL(code string) bool {
	return sqltext.ContainsWord(code, "CASE", "SELECT", "WHEN", "COALESCE") ||
		funcCallRx.MatchString(code) || len(sqltext.References(code)) > 0
}

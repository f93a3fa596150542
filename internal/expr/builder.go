package expr

import (
	"fmt"
	"regexp"
	"strings"

	"sqljob-generator/internal/common"
	"sqljob-generator/internal/rules"
	"sqljob-generator/internal/validate"
)

// Column describes the target of an expression.
type Column struct {
	Name     string
	Datatype string
}

// Expression is one SELECT-list entry.
type Expression struct {
	// Target is the output column name.
	Target string
	// SQL is the final expression, without alias.
	SQL string
	// Datatype is the declared or inferred target type.
	Datatype string
	// Comments are emitted above the expression, without "--".
	Comments []string
	Kind     rules.Kind
	Raw      string
}

var (
	aliasTailRx   = regexp.MustCompile(`(?i)\s+AS\s+([A-Za-z_]\w*)\s*$`)
	structuredRx  = regexp.MustCompile(`(?i)\b(?:CAST|TRY_CAST|COALESCE|TO_DATE|CASE|CURRENT_TIMESTAMP)\b`)
	integerRx     = regexp.MustCompile(`^[-+]?\d+$`)
	decimalRx     = regexp.MustCompile(`^[-+]?\d+\.\d+$`)
	dateLiteralRx = regexp.MustCompile(`(?i)^TO_DATE\(|\d{4}-\d{2}-\d{2}`)
	columnRefRx   = regexp.MustCompile(`^[A-Za-z_]\w*\.[A-Za-z_]\w*$`)
	typeSpaceRx   = regexp.MustCompile(`\s*([(),])\s*`)
)

// Build renders a fragment as a typed expression for col.
func Build(f rules.Fragment, col Column) Expression {
	e := Expression{
		Target:   common.SanitizeIdent(col.Name),
		Kind:     f.Kind,
		Raw:      f.Raw,
		Comments: append([]string(nil), f.Comments...),
	}

	sql := strings.TrimSpace(f.SQL)
	if sql == "" {
		sql, f.Literal = "NULL", true
	}

	if m := aliasTailRx.FindStringSubmatchIndex(sql); m != nil && !f.Literal {
		e.Target = sql[m[2]:m[3]]
		sql = strings.TrimSpace(sql[:m[0]])
	}

	sql, changes := validate.Repair(sql)
	for _, c := range changes {
		e.Comments = append(e.Comments, "repaired: "+c)
	}

	e.Datatype = NormalizeType(col.Datatype)
	if e.Datatype == "" {
		e.Datatype = Infer(sql)
	}

	if f.Default != "" {
		sql = "COALESCE(" + sql + ", " + f.Default + ")"
	}

	e.SQL = applyCast(sql, e.Datatype, f.Literal)

	return e
}

// applyCast casts literals to dt. DECIMAL targets use a null-safe TRY_CAST for
// literals and plain column references. Structured expressions are left alone.
func applyCast(sql, dt string, literal bool) string {
	if dt == "" {
		return sql
	}

	if strings.EqualFold(sql, "NULL") {
		return "CAST(NULL AS " + dt + ")"
	}

	if structuredRx.MatchString(sql) {
		return sql
	}

	if IsDecimal(dt) && (literal || columnRefRx.MatchString(sql)) {
		return fmt.Sprintf("COALESCE(TRY_CAST(%s AS %s), TRY_CAST(NULL AS %s))", sql, dt, dt)
	}

	if literal {
		return "CAST(" + sql + " AS " + dt + ")"
	}

	return sql
}

// Infer derives a datatype from an expression.
func Infer(sql string) string {
	v := strings.Trim(strings.TrimSpace(sql), "'")

	switch {
	case integerRx.MatchString(v):
		return "BIGINT"
	case decimalRx.MatchString(v):
		return "DECIMAL(17,2)"
	case dateLiteralRx.MatchString(v):
		return "DATE"
	default:
		return "STRING"
	}
}

// NormalizeType upper-cases a declared type and removes spacing around its parameters.
func NormalizeType(dt string) string {
	dt = strings.ToUpper(common.CollapseSpace(dt))
	return typeSpaceRx.ReplaceAllString(dt, "$1")
}

// IsDecimal reports whether dt is a DECIMAL or NUMERIC type.
func IsDecimal(dt string) bool {
	u := strings.ToUpper(dt)
	return strings.HasPrefix(u, "DECIMAL") || strings.HasPrefix(u, "NUMERIC")
}

// Render returns the expression as a SELECT-list entry: "<sql> AS <target>".
func (e Expression) Render() string {
	return e.SQL + " AS " + e.Target
}

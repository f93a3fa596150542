package rules

import (
	"regexp"
	"strings"

	"sqljob-generator/internal/sqltext"
)

var (
	setValueRx   = regexp.MustCompile(`(?is)\bset(?:\s+[\w.]+)?\s+to\s+(.+)$`)
	setNullRx    = regexp.MustCompile(`(?i)\bset\s+to\s+null\b`)
	trailParenRx = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	dateValueRx  = regexp.MustCompile(`^['"]?(\d{4}-\d{2}-\d{2})['"]?$`)
	numberRx     = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
)

// literal builds the SQL literal for "Set to <value>" style text.
func literal(code string) Fragment {
	lower := strings.ToLower(code)

	switch {
	case setNullRx.MatchString(code) || nullRx.MatchString(code):
		return Fragment{SQL: "NULL", Literal: true}
	case currentTsRx.MatchString(lower):
		return Fragment{SQL: "CURRENT_TIMESTAMP()"}
	case effectiveDateRx.MatchString(lower):
		return Fragment{SQL: EffectiveDateExpr}
	}

	value := code
	if m := setValueRx.FindStringSubmatch(code); m != nil {
		value = m[1]
	}

	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimRight(value, "."))
	value = strings.TrimSpace(trailParenRx.ReplaceAllString(value, ""))

	if m := dateValueRx.FindStringSubmatch(value); m != nil {
		return Fragment{SQL: "TO_DATE('" + m[1] + "', 'yyyy-MM-dd')"}
	}

	return Fragment{SQL: valueLiteral(value), Literal: true}
}

// valueLiteral renders a plain value as a numeric literal, NULL, or a quoted string.
// Codes with a leading "+" or leading zeros stay strings.
func valueLiteral(v string) string {
	switch {
	case numberRx.MatchString(v):
		return v
	case nullRx.MatchString(v):
		return "NULL"
	case len(v) >= 2 && (v[0] == '\'' && v[len(v)-1] == '\'' || v[0] == '"' && v[len(v)-1] == '"'):
		inner := v[1 : len(v)-1]
		if v[0] == '\'' {
			inner = strings.ReplaceAll(inner, "''", "'")
		}

		return sqltext.QuoteString(inner)
	default:
		return sqltext.QuoteString(v)
	}
}

// defaultLiteral renders a COALESCE default; NULL means no default.
func defaultLiteral(v string) string {
	if nullRx.MatchString(strings.Trim(v, `'"`)) {
		return ""
	}

	return valueLiteral(v)
}

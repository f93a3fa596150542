package common

import (
	"strings"
	"unicode"
)

// UnknownStr is the fallback string for unrecognised enum values.
const UnknownStr = "unknown"

// LeafName returns the last dotted segment of a table reference,
// e.g. "db.schema.orders" -> "orders".
func LeafName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[i+1:]
	}

	return ref
}

// SanitizeIdent replaces every character outside [A-Za-z0-9_] with an underscore
// and trims leading/trailing underscores. Returns "col" for inputs that reduce to nothing.
func SanitizeIdent(s string) string {
	var b strings.Builder

	for _, r := range strings.TrimSpace(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			continue
		}

		b.WriteByte('_')
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "col"
	}

	return out
}

// FirstToken returns the first whitespace-separated token of s.
func FirstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}

	return fields[0]
}

// CollapseSpace folds runs of whitespace (including newlines) into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FileStem lower-cases a name and makes it safe for use in a file name.
func FileStem(s string) string {
	return strings.ToLower(SanitizeIdent(s))
}

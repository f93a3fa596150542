package sqltext

import (
	"strings"
)

// Collapse folds whitespace runs outside string literals into single spaces.
// Line comments keep their terminating newline so code after them survives.
func Collapse(s string) string {
	var b strings.Builder

	prevEnd := 0
	afterLineComment := false

	for _, t := range Tokens(s) {
		switch {
		case afterLineComment:
			b.WriteByte('\n')
		case t.Start > prevEnd && b.Len() > 0:
			b.WriteByte(' ')
		}

		text := t.Text
		afterLineComment = false

		if t.IsComment() && strings.HasPrefix(text, "--") {
			text = strings.TrimRight(text, "\r\n")
			afterLineComment = true
		}

		b.WriteString(text)
		prevEnd = t.End
	}

	return b.String()
}

// SplitComments removes "--" and "/* */" comments outside string literals and
// returns the remaining code (collapsed) and the comment bodies.
func SplitComments(s string) (string, []string) {
	var (
		code     strings.Builder
		comments []string
	)

	prevEnd := 0
	skipped := false

	for _, t := range Tokens(s) {
		if t.IsComment() {
			if body := commentBody(t.Text); body != "" {
				comments = append(comments, body)
			}

			prevEnd = t.End
			skipped = true

			continue
		}

		if (t.Start > prevEnd || skipped) && code.Len() > 0 {
			code.WriteByte(' ')
		}

		code.WriteString(t.Text)
		prevEnd = t.End
		skipped = false
	}

	return code.String(), comments
}

func commentBody(text string) string {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "--"):
		text = strings.TrimPrefix(text, "--")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}

	return strings.Join(strings.Fields(text), " ")
}

// Balance counts CASE/END and parenthesis nesting outside strings and comments.
// Positive values mean unclosed CASE or "(", negative values mean surplus END or ")".
// Words that follow a "." are column names, not keywords.
type Balance struct {
	Case         int
	Paren        int
	Unterminated bool
}

// Balanced reports whether every CASE and "(" is closed and all strings terminate.
func (b Balance) Balanced() bool {
	return b.Case == 0 && b.Paren == 0 && !b.Unterminated
}

// Measure computes the Balance of s.
func Measure(s string) Balance {
	var b Balance

	toks := Tokens(s)
	for i, t := range toks {
		switch {
		case t.Unterminated():
			b.Unterminated = true
		case t.Text == "(":
			b.Paren++
		case t.Text == ")":
			b.Paren--
		case qualified(toks, i):
		case t.Is("CASE"):
			b.Case++
		case t.Is("END"):
			b.Case--
		}
	}

	return b
}

// qualified reports whether token i directly follows a "." (e.g. the "end" in "t.end").
func qualified(toks []Token, i int) bool {
	return i > 0 && toks[i-1].Text == "." && toks[i-1].End == toks[i].Start
}

// IndexTopLevel returns the byte offset of the first occurrence of any of the
// keywords at parenthesis and CASE depth zero, or -1.
func IndexTopLevel(s string, keywords ...string) int {
	paren, kase := 0, 0

	toks := Tokens(s)
	for i, t := range toks {
		switch {
		case t.Text == "(":
			paren++
		case t.Text == ")":
			paren--
		case qualified(toks, i):
		case t.Is("CASE"):
			kase++
		case t.Is("END"):
			kase--
		case paren == 0 && kase <= 0:
			for _, k := range keywords {
				if t.Is(k) {
					return t.Start
				}
			}
		}
	}

	return -1
}

// ContainsWord reports whether any of the words appears as a token outside strings and comments.
func ContainsWord(s string, words ...string) bool {
	for _, t := range Tokens(s) {
		for _, w := range words {
			if t.Is(w) {
				return true
			}
		}
	}

	return false
}

// Ref is a "qualifier.column" reference.
type Ref struct {
	Qualifier string
	Column    string
	Start     int
	End       int
}

// References returns every "q.column" reference outside strings and comments.
// In a three-part name only the leading pair is reported.
func References(s string) []Ref {
	var out []Ref

	toks := Tokens(s)
	for i := 0; i+2 < len(toks); i++ {
		q, dot, col := toks[i], toks[i+1], toks[i+2]
		if !q.IsWord() || dot.Text != "." || !col.IsWord() || q.End != dot.Start || dot.End != col.Start {
			continue
		}

		if qualified(toks, i) {
			continue
		}

		out = append(out, Ref{Qualifier: q.Text, Column: col.Text, Start: q.Start, End: col.End})
	}

	return out
}

// RewriteQualifiers calls fn for every "q" in a "q.column" reference outside
// strings and comments and substitutes its result.
func RewriteQualifiers(s string, fn func(qualifier string) string) string {
	var b strings.Builder

	last := 0

	for _, r := range References(s) {
		repl := fn(r.Qualifier)
		if repl == r.Qualifier {
			continue
		}

		b.WriteString(s[last:r.Start])
		b.WriteString(repl)
		last = r.Start + len(r.Qualifier)
	}

	b.WriteString(s[last:])

	return b.String()
}

// Qualifiers returns the distinct qualifiers referenced as "q.column" in s, in order.
func Qualifiers(s string) []string {
	var out []string

	seen := map[string]struct{}{}

	RewriteQualifiers(s, func(q string) string {
		key := strings.ToLower(q)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			out = append(out, q)
		}

		return q
	})

	return out
}

// QuoteString renders v as a single-quoted SQL string literal.
func QuoteString(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

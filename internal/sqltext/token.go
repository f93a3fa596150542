package sqltext

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// Token is a lexical token with its raw source text and byte offsets.
type Token struct {
	Kind  int
	Text  string
	Start int
	End   int
}

// Tokens lexes s with the MySQL-dialect tokenizer. Unknown bytes are returned
// as sqlparser.LEX_ERROR tokens rather than stopping the scan.
func Tokens(s string) []Token {
	var out []Token

	tkn := sqlparser.NewStringTokenizer(s)
	prevEnd := 0

	for {
		kind, _ := tkn.Scan()
		if kind == 0 {
			break
		}

		end := min(max(tkn.Position-1, prevEnd), len(s))
		start := prevEnd

		for start < end && isBlank(s[start]) {
			start++
		}

		out = append(out, Token{Kind: kind, Text: s[start:end], Start: start, End: end})
		prevEnd = end

		if end >= len(s) && kind == sqlparser.LEX_ERROR {
			break
		}
	}

	return out
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// IsWord reports whether the token is an identifier or keyword.
func (t Token) IsWord() bool {
	if t.Text == "" || t.Kind == sqlparser.STRING || t.Kind == sqlparser.COMMENT {
		return false
	}

	c := t.Text[0]

	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Is reports whether the token is the keyword or identifier word, case-insensitively.
func (t Token) Is(word string) bool {
	return t.IsWord() && strings.EqualFold(t.Text, word)
}

// IsComment reports whether the token is a "--" or "/* */" comment.
func (t Token) IsComment() bool {
	return t.Kind == sqlparser.COMMENT && (strings.HasPrefix(t.Text, "--") || strings.HasPrefix(t.Text, "/*"))
}

// IsString reports whether the token is a quoted string literal.
func (t Token) IsString() bool {
	return t.Kind == sqlparser.STRING
}

// Unterminated reports whether the token is a string literal missing its closing quote.
func (t Token) Unterminated() bool {
	return t.Kind == sqlparser.LEX_ERROR && len(t.Text) > 0 && (t.Text[0] == '\'' || t.Text[0] == '"')
}

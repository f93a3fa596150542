package match

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldHeader normalizes header text for fuzzy matching.
// The normalization pipeline:
// 1. Strip diacritics (NFD, drop combining marks, NFC).
// 2. Tokenize on any non-alphanumeric rune and on CamelCase boundaries.
// 3. Case-fold to lower and singularize each token.
// 4. Join tokens with a single space.
func FoldHeader(s string) string {
	tokens := TokenizeIdent(stripMarks(s))
	for i, t := range tokens {
		tokens[i] = inflection.Singular(t)
	}

	return strings.Join(tokens, " ")
}

// stripMarks removes combining marks, e.g. "Dé" -> "De".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

// tokenizeCamelCase splits a CamelCase or separated string into tokens.
// Examples:
//   - "BusinessRule" -> ["Business", "Rule"]
//   - "Table/File Name * (auto populate)" -> ["Table", "File", "Name", "auto", "populate"]
//   - "SRCTable" -> ["SRC", "Table"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	rs := []rune(s)
	for i := range rs {
		r := rs[i]

		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i > 0 && shouldStartNewToken(rs, i) && current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator reports whether r splits tokens. Anything that is not a letter or digit does.
func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(rs []rune, i int) bool {
	r := rs[i]
	prev := rs[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prev)

	// "tableName" -> split before 'N'
	if isUpper && !isPrevUpper && !isSeparator(prev) {
		return true
	}

	// "SRCTable" -> "SRC" + "Table", split before 'T'
	hasNextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])

	return isUpper && isPrevUpper && hasNextLower
}

// TokenizeIdent splits an identifier or header into lowercase tokens.
func TokenizeIdent(s string) []string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

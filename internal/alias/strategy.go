package alias

import (
	"regexp"
	"strings"

	"sqljob-generator/internal/common"
)

// Strategy proposes an alias for a table. Returning false passes to the next strategy.
type Strategy interface {
	Alias(table string) (string, bool)
}

// HintStrategy returns aliases pinned by configuration.
type HintStrategy struct {
	aliases map[string]string
}

// NewHintStrategy creates a strategy over table -> alias pairs. Keys are matched case-insensitively.
func NewHintStrategy(aliases map[string]string) *HintStrategy {
	m := make(map[string]string, len(aliases))
	for t, a := range aliases {
		m[strings.ToLower(t)] = a
	}

	return &HintStrategy{aliases: m}
}

// Alias implements Strategy.
func (s *HintStrategy) Alias(table string) (string, bool) {
	a, ok := s.aliases[strings.ToLower(common.LeafName(table))]
	if !ok {
		a, ok = s.aliases[strings.ToLower(table)]
	}

	return a, ok && a != ""
}

var (
	fromJoinRx = regexp.MustCompile(`(?i)\b(?:from|join)\s+([A-Za-z0-9_.]+)(?:\s+(?:as\s+)?([A-Za-z_][A-Za-z0-9_]*))?`)
	withRx     = regexp.MustCompile(`(?i)\b([A-Za-z0-9_.]+)\s+([A-Za-z_][A-Za-z0-9_]*)\s+with\s+([A-Za-z0-9_.]+)\s+([A-Za-z_][A-Za-z0-9_]*)\s+on\b`)
)

// TextStrategy learns aliases from "FROM <table> <alias>", "JOIN <table> <alias>"
// and "<table> <alias> WITH <table> <alias> ON" mentions. The first usable alias wins.
type TextStrategy struct {
	aliases map[string]string
}

// NewTextStrategy scans texts for table aliases.
func NewTextStrategy(texts []string) *TextStrategy {
	s := &TextStrategy{aliases: map[string]string{}}

	learn := func(table, alias string) {
		key := strings.ToLower(common.LeafName(table))
		if alias == "" || IsReserved(alias) || key == "" {
			return
		}

		if _, ok := s.aliases[key]; !ok {
			s.aliases[key] = alias
		}
	}

	for _, text := range texts {
		for _, m := range withRx.FindAllStringSubmatch(text, -1) {
			learn(m[1], m[2])
			learn(m[3], m[4])
		}

		for _, m := range fromJoinRx.FindAllStringSubmatch(text, -1) {
			learn(m[1], m[2])
		}
	}

	return s
}

// Alias implements Strategy.
func (s *TextStrategy) Alias(table string) (string, bool) {
	a, ok := s.aliases[strings.ToLower(common.LeafName(table))]
	return a, ok
}

// SyntheticStrategy abbreviates the table name: its first letter followed by
// the next consonants, up to four characters. Always succeeds.
type SyntheticStrategy struct{}

// Alias implements Strategy.
func (SyntheticStrategy) Alias(table string) (string, bool) {
	return Synthesize(table), true
}

// Synthesize builds an abbreviation such as "ossbr_2_1" -> "ossb" or "glsxref" -> "glsx".
func Synthesize(table string) string {
	name := strings.ToLower(common.LeafName(table))

	var letters []rune

	for _, r := range name {
		if r < 'a' || r > 'z' {
			continue
		}

		if len(letters) == 0 || !strings.ContainsRune("aeiou", r) {
			letters = append(letters, r)
		}

		if len(letters) == 4 {
			break
		}
	}

	out := string(letters)
	if len(out) < 3 {
		out = truncate(alnum(name), 4)
	}

	if out == "" {
		out = "t"
	}

	if out[0] >= '0' && out[0] <= '9' {
		out = truncate("t"+out, 4)
	}

	return out
}

func alnum(s string) string {
	var b strings.Builder

	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}

	return s
}

var refRx = regexp.MustCompile(`(?i)^ref\d*$`)

var reserved = map[string]struct{}{
	"on": {}, "with": {}, "join": {}, "as": {}, "using": {}, "left": {}, "right": {},
	"inner": {}, "outer": {}, "full": {}, "cross": {}, "where": {}, "select": {},
	"set": {}, "and": {}, "or": {}, "not": {}, "from": {}, "group": {}, "order": {},
	"by": {}, "qualify": {}, "having": {}, "union": {}, "limit": {}, "when": {},
	"then": {}, "else": {}, "end": {}, "case": {}, "is": {}, "null": {}, "in": {},
	"step1": {},
}

// IsReserved reports whether name can never be used as an alias.
func IsReserved(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := reserved[lower]; ok {
		return true
	}

	return refRx.MatchString(lower)
}

package validate

import (
	"fmt"
	"strings"

	"sqljob-generator/internal/sqltext"
)

// Repair closes unbalanced CASE blocks and parentheses in a single expression
// and trims surplus trailing parentheses. It returns the expression and the
// changes applied.
func Repair(expr string) (string, []string) {
	var changes []string

	b := sqltext.Measure(expr)

	for b.Paren < 0 && strings.HasSuffix(strings.TrimSpace(expr), ")") {
		expr = strings.TrimSuffix(strings.TrimSpace(expr), ")")
		b.Paren++

		changes = append(changes, "removed surplus ')'")
	}

	if b.Case > 0 {
		expr += strings.Repeat(" END", b.Case)
		changes = append(changes, fmt.Sprintf("appended %d missing END", b.Case))
	}

	if b.Paren > 0 {
		expr += strings.Repeat(")", b.Paren)
		changes = append(changes, fmt.Sprintf("appended %d missing ')'", b.Paren))
	}

	return expr, changes
}

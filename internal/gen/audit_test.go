package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqljob-generator/internal/validate"
)

func TestAudit(t *testing.T) {
	p := testPlan()
	p.Diagnostics.AddWarning("missing_source", "no source column", "acct_dim", "line 9")

	res := validate.Result{
		Warnings: []string{"unbalanced parentheses: +1"},
		Changes:  []string{"dropped duplicate join: LEFT JOIN g ON x = y"},
	}

	out, err := Audit(p, "ossbr", res)
	require.NoError(t, err)

	doc := string(out)
	assert.Contains(t, doc, "# Audit report: acct_dim")
	assert.Contains(t, doc, "- Source malcode: ossbr")
	assert.Contains(t, doc, "- Base entity: ossbr_2_1 (mas)")
	assert.Contains(t, doc, "- Sources: ossbr_2_1 (mas), glsxref (g)")
	assert.Contains(t, doc, "- Joins: 2")
	assert.Contains(t, doc, "| 1 | acct_no | 2 | ossbr_2_1.SRACCT | `mas.SRACCT` |  |")
	assert.Contains(t, doc, "| 2 | status_cd | 3, 4 |")
	assert.Contains(t, doc, "merged 2 variants")
	assert.Contains(t, doc, "| 2 | WHERE | a or b<br>second line | `mas.a = 1 OR mas.b = 2` |")
	assert.Contains(t, doc, "| 3 | QUALIFY | keep first |")
	assert.Contains(t, doc, "### Audit-only rules")
	assert.Contains(t, doc, "- Exclusion rule -> Exclude test accounts")
	assert.Contains(t, doc, "- warning: unbalanced parentheses: +1")
	assert.Contains(t, doc, "- fixed: dropped duplicate join")
	assert.Contains(t, doc, "## Diagnostics")
	assert.Contains(t, doc, "no source column")
	assert.NotContains(t, doc, "No structural issues found.")
}

func TestAudit_Clean(t *testing.T) {
	p := testPlan()
	p.Where = nil
	p.Qualify = nil
	p.Notes = nil

	out, err := Audit(p, "ossbr", validate.Result{})
	require.NoError(t, err)

	doc := string(out)
	assert.Contains(t, doc, "No predicates recovered.")
	assert.Contains(t, doc, "No structural issues found.")
	assert.NotContains(t, doc, "## Diagnostics")
	assert.NotContains(t, doc, "### Audit-only rules")
}

func TestCell(t *testing.T) {
	assert.Equal(t, `a \| b<br>c`, cell(" a | b\r\nc "))
	assert.Equal(t, "`x = 'y'`", code("x = `y`"))
	assert.Equal(t, "", code("  "))
}

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqljob-generator/internal/diagnostic"
	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/rules"
)

func testRows() []mapping.Row {
	return []mapping.Row{
		{
			Line: 1, SourceTable: "ossbr_2_1", SourceColumn: "SRACCT", TargetTable: "acct_dim", TargetColumn: "acct_no",
			TransformationRule: "Straight move",
			JoinClause:         "LEFT JOIN glsxref g ON mas.SRACCT = g.acct",
			BusinessRule:       "ossbr_2_1.SRSTATUS <> 'A'",
		},
		{Line: 2, SourceTable: "ossbr_2_1", SourceColumn: "SRSTATUS", TargetTable: "acct_dim", TargetColumn: "status_cd", TransformationRule: "Set to Active"},
		{Line: 3, SourceTable: "ossbr_2_1", SourceColumn: "SRSTATUS", TargetColumn: "Status_CD", TransformationRule: "Set to 'A'"},
		{Line: 4, SourceTable: "glsxref", SourceColumn: "gl_desc", TargetColumn: "gl_desc", TransformationRule: "g.gl_desc"},
		{Line: 5, SourceTable: "ossbr_2_1", SourceColumn: "amt", TargetColumn: "amount", TargetDatatype: "DECIMAL(17,2)", TransformationRule: "Set to 42"},
		{Line: 6, SourceTable: "ossbr_2_1", BusinessRule: "ossbr_2_1.SRSTATUS  <> 'A'"},
	}
}

func testConfig(t *testing.T) ResolutionConfig {
	t.Helper()

	hints, err := mapping.ParseHints([]byte("aliases:\n  ossbr_2_1: mas\n"))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Hints = hints

	return cfg
}

func TestResolve_FullSheet(t *testing.T) {
	p, err := NewResolver(&mapping.Dataset{Rows: testRows()}, testConfig(t)).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "acct_dim", p.Target)
	assert.Equal(t, "ossbr_2_1", p.BaseTable)
	assert.Equal(t, "mas", p.BaseAlias)

	require.Len(t, p.Sources, 2)
	assert.Equal(t, Source{Table: "ossbr_2_1", Alias: "mas", Columns: []string{"SRACCT", "SRSTATUS", "amt"}}, p.Sources[0])
	assert.Equal(t, Source{Table: "glsxref", Alias: "g", Columns: []string{"gl_desc"}}, p.Sources[1])

	require.Len(t, p.Joins, 1)
	assert.Equal(t, "LEFT JOIN glsxref g ON mas.SRACCT = g.acct", p.Joins[0].String())

	require.Len(t, p.Where, 1)
	assert.Equal(t, "mas.SRSTATUS = 'A'", p.Where[0].SQL)
	assert.Len(t, p.Trace.BusinessRules, 1, "identical rule text is interpreted once")

	var rendered []string
	for _, c := range p.Columns {
		rendered = append(rendered, c.Expression.Render())
	}

	assert.Equal(t, []string{
		"mas.SRACCT AS acct_no",
		"CAST('Active' AS STRING) AS status_cd",
		"g.gl_desc AS gl_desc",
		"COALESCE(TRY_CAST(42 AS DECIMAL(17,2)), TRY_CAST(NULL AS DECIMAL(17,2))) AS amount",
	}, rendered)

	status := p.Columns[1]
	assert.Equal(t, 2, status.Variants)
	assert.Equal(t, []int{2, 3}, status.Lines)
	assert.Equal(t, "Set to Active", status.Raw)
	assert.Equal(t, []string{"NOTE: merged 2 variants for target column 'status_cd'"}, status.Expression.Comments)

	assert.Empty(t, p.Diagnostics.Warnings)

	for _, d := range p.Diagnostics.Infos {
		assert.Equal(t, "acct_dim", d.Target)
	}

	assert.Equal(t, rules.KindLiteral, p.Trace.Transformations[1].Kind)
}

func TestResolve_EmbeddedJoinAndCaseSplit(t *testing.T) {
	rows := []mapping.Row{{
		Line: 1, SourceTable: "ossbr_2_1", SourceColumn: "x", TargetTable: "t", TargetColumn: "flag",
		TransformationRule: "CASE WHEN g.x > 0 THEN 1 ELSE 0 END FROM ossbr_2_1 mas LEFT JOIN glsxref g ON mas.a = g.a",
	}}

	p, err := NewResolver(&mapping.Dataset{Rows: rows}, testConfig(t)).Resolve()
	require.NoError(t, err)

	require.Len(t, p.Joins, 1)
	assert.Equal(t, "LEFT JOIN glsxref g ON mas.a = g.a", p.Joins[0].String())

	require.Len(t, p.Columns, 1)
	e := p.Columns[0].Expression
	assert.Equal(t, "CASE WHEN g.x > 0 THEN 1 ELSE 0 END", e.SQL)
	assert.Contains(t, e.Comments, "Source context preserved: FROM ossbr_2_1 mas LEFT JOIN glsxref g ON mas.a = g.a")
}

func TestResolve_SourceNeverJoined(t *testing.T) {
	rows := []mapping.Row{
		{Line: 1, SourceTable: "ossbr_2_1", SourceColumn: "a", TargetTable: "t", TargetColumn: "a"},
		{Line: 2, SourceTable: "ossbr_2_1", SourceColumn: "b", TargetColumn: "b"},
		{Line: 3, SourceTable: "branch", SourceColumn: "name", TargetColumn: "branch_nm", TransformationRule: "Straight move"},
	}

	p, err := NewResolver(&mapping.Dataset{Rows: rows}, testConfig(t)).Resolve()
	require.NoError(t, err)

	assert.Empty(t, p.Joins)
	assert.Equal(t, "mas.a AS a", p.Columns[0].Expression.Render())

	found := false

	for _, d := range p.Diagnostics.Warnings {
		if d.Code == diagnostic.CodeUndeclaredAlias {
			found = true
		}
	}

	assert.True(t, found)
}

func TestResolve_MissingSourceColumn(t *testing.T) {
	rows := []mapping.Row{{Line: 1, SourceTable: "ossbr_2_1", TargetTable: "t", TargetColumn: "c", TargetDatatype: "date", TransformationRule: "Straight move"}}

	p, err := NewResolver(&mapping.Dataset{Rows: rows}, testConfig(t)).Resolve()
	require.NoError(t, err)

	assert.Equal(t, "CAST(NULL AS DATE) AS c", p.Columns[0].Expression.Render())
	require.NotEmpty(t, p.Diagnostics.Warnings)
	assert.Equal(t, diagnostic.CodeMissingSource, p.Diagnostics.Warnings[0].Code)
}

func TestResolve_NoSourceTable(t *testing.T) {
	rows := []mapping.Row{{Line: 1, TargetColumn: "c", TransformationRule: "Set to 1"}}

	p, err := NewResolver(&mapping.Dataset{Rows: rows}, DefaultConfig()).Resolve()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseTable, p.BaseTable)
	assert.Equal(t, DefaultTarget, p.Target)
	require.Len(t, p.Sources, 1)
	assert.Equal(t, DefaultBaseTable, p.Sources[0].Table)
}

func TestResolve_NilDataset(t *testing.T) {
	_, err := NewResolver(nil, DefaultConfig()).Resolve()
	require.Error(t, err)
}

func TestBaseEntity(t *testing.T) {
	rows := func(tables ...string) []mapping.Row {
		out := make([]mapping.Row, len(tables))
		for i, tb := range tables {
			out[i] = mapping.Row{SourceTable: tb}
		}

		return out
	}

	assert.Equal(t, "a", baseEntity(rows("a", "b", "b", "a")))
	assert.Equal(t, "b", baseEntity(rows("a", "b", "", "b")))
	assert.Empty(t, baseEntity(rows("", "")))
}

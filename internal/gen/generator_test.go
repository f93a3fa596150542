package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqljob-generator/internal/expr"
	"sqljob-generator/internal/joins"
	"sqljob-generator/internal/plan"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "dt_acct_dim_ossbr.sql", FileName("dt", "acct_dim", "ossbr", "sql"))
	assert.Equal(t, "audit_acct_dim_ossbr.md", FileName("audit", "Acct_Dim", "OSSBR", "md"))
	assert.Equal(t, "dt_acct_dim.sql", FileName("dt", "acct_dim", "", "sql"))
}

func TestJobDir(t *testing.T) {
	assert.Equal(t, "acct_dim_job", JobDir("ACCT_DIM"))
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(DefaultGeneratorConfig())

	out, err := g.Generate(testPlan(), "ossbr")
	require.NoError(t, err)

	assert.Equal(t, "dt_acct_dim_ossbr.sql", out.SQLFile.Filename)
	assert.Equal(t, "audit_acct_dim_ossbr.md", out.AuditFile.Filename)
	assert.Equal(t, out.SQL, string(out.SQLFile.Content))
	assert.Equal(t, expectedStatement, out.Raw)
	assert.Empty(t, out.Validation.Changes)

	files := out.Files()
	require.Len(t, files, 2)
	assert.Equal(t, out.SQLFile.Filename, files[0].Filename)
}

func TestGenerator_DebugSidecar(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultGeneratorConfig()
	cfg.DebugDir = dir

	p := &plan.ResolvedViewPlan{
		Target:    "t",
		BaseTable: "src",
		BaseAlias: "s",
		Sources:   []plan.Source{{Table: "src", Alias: "s"}},
		Joins: []joins.Edge{
			{Type: joins.Left, Entity: "ref", Alias: "r", On: "r.id = s.id"},
			{Type: joins.Left, Entity: "ref", Alias: "r2", On: "r2.id = s.id"},
		},
		Columns: []plan.ResolvedColumn{
			{Expression: expr.Expression{Target: "a", SQL: "s.a"}},
		},
	}

	out, err := NewGenerator(cfg).Generate(p, "m")
	require.NoError(t, err)
	require.NotEmpty(t, out.Validation.Changes)
	assert.NotContains(t, out.SQL, "r2")

	raw, err := os.ReadFile(filepath.Join(dir, "dt_t_m.unvalidated.sql"))
	require.NoError(t, err)
	assert.Equal(t, out.Raw, string(raw))
}

func TestGenerator_GenerateError(t *testing.T) {
	_, err := NewGenerator(DefaultGeneratorConfig()).Generate(&plan.ResolvedViewPlan{Target: "x"}, "m")
	require.Error(t, err)
}

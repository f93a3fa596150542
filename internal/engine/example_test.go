package engine

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqljob-generator/internal/mapping"
	"sqljob-generator/internal/sqltext"
)

func TestRun_ExampleSheet(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "acct_dim")

	ds, err := mapping.LoadFile(filepath.Join(dir, "mapping.csv"))
	require.NoError(t, err)

	hints, err := mapping.LoadHints(filepath.Join(dir, "hints.yaml"))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Malcode = "ossbr"
	opts.OutputDir = t.TempDir()
	opts.Resolution.Hints = hints

	res, err := New(opts, nil).Run(ds)
	require.NoError(t, err)
	require.Len(t, res.Targets, 1)

	tr := res.Targets[0]
	sql := tr.Output.SQL

	assert.True(t, sqltext.Measure(sql).Balanced())
	assert.Equal(t, 1, strings.Count(sql, ";"))
	assert.Regexp(t, `(?m)^  QUALIFY\n    -- Business Rule #\d+: .*SRSECCODE.*\n    ROW_NUMBER\(\) OVER \(PARTITION BY mas\.SRSECCODE ORDER BY mas\.SRSECCODE\) = 1$`, sql)
	assert.NotContains(t, sql, "INNER JOIN", "lookup joins never drop base rows")
	assert.Contains(t, sql, "merged 2 variants for target column 'status_cd'")

	for _, col := range []string{"acct_no", "status_cd", "gl_desc", "balance_amt", "sec_code", "acct_type_desc", "etl_effective_dt"} {
		n := strings.Count(sql, " AS "+col+",\n") + strings.Count(sql, " AS "+col+"\nFROM")
		assert.Equal(t, 1, n, col)
	}

	assert.Equal(t, "etl_effective_dt", tr.Manifest.PartitionBy)
	assert.Equal(t, []string{"ossbr_2_1", "glsxref", "acct_type_ref"}, tr.Manifest.Sources)
}

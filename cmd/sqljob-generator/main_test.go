package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheet = "Table/File Name * (auto populate),Column Name * (auto populate),Data Type * (auto populate)," +
	"Table/File Name * (auto populate),Column/Field Name * (auto populate),Data Type * (auto populate)," +
	"Business Rule (auto populate),Join Clause (auto populate),Transformation Rule/Logic (auto populate)\n" +
	"ossbr_2_1,SRACCT,CHAR(10),acct_dim,acct_no,STRING,,,Straight move\n" +
	"ossbr_2_1,SRSTATUS,CHAR(1),acct_dim,status_cd,STRING,,,\"Set to 'A'\"\n"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestGenerate_CSV(t *testing.T) {
	dir := t.TempDir()
	csv := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(csv, []byte(sheet), 0o644))

	outDir := filepath.Join(dir, "out")
	debugDir := filepath.Join(dir, "debug")

	out, err := execute(t, "generate", csv, "--malcode", "ossbr", "--out", outDir, "--debug-dir", debugDir, "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "acct_dim: "+filepath.Join(outDir, "acct_dim_job"))
	assert.Contains(t, out, "issue(s), see debug logs in "+debugDir)
	assert.FileExists(t, filepath.Join(outDir, "acct_dim_job", "dt_acct_dim_ossbr.sql"))
	assert.FileExists(t, filepath.Join(outDir, "acct_dim_job", "job_acct_dim_ossbr.json"))
	assert.FileExists(t, filepath.Join(outDir, "acct_dim_job", "audit_acct_dim_ossbr.md"))
	assert.FileExists(t, filepath.Join(debugDir, "joins_debug.log"))
}

func TestGenerate_InputErrors(t *testing.T) {
	_, err := execute(t, "generate", "--out", t.TempDir(), "--log-level", "error")
	require.Error(t, err)

	_, err = execute(t, "generate", filepath.Join(t.TempDir(), "missing.csv"), "--log-level", "error")
	require.Error(t, err)

	_, err = execute(t, "generate", "x.csv", "--format", "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest format")
}

func TestValidate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT a.x\nFROM t a\nLEFT JOIN r b\n;\n"), 0o644))

	out, err := execute(t, "validate", path, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed: added ON 1=1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "LEFT JOIN r b ON 1=1")
}

func TestValidate_WriteBalances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT CASE WHEN a THEN (1 FROM t;\n"), 0o644))

	out, err := execute(t, "validate", path, "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "fixed: appended 1 missing END")
	assert.NotContains(t, out, "warning: unbalanced")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT CASE WHEN a THEN (1 FROM t END);\n", string(data))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", filepath.Join(t.TempDir(), "none.sql"))
	require.Error(t, err)
}

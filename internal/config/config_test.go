package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Equal(t, "dt", cfg.Output.SQLPrefix)
	assert.Equal(t, "job", cfg.Output.ManifestPrefix)
	assert.Equal(t, "audit", cfg.Output.AuditPrefix)
	assert.Equal(t, "json", cfg.Output.ManifestFormat)
	assert.False(t, cfg.Output.SQLByReference)
	assert.Equal(t, "debug", cfg.Debug.Dir)
	assert.True(t, cfg.Debug.JoinDebug)
	assert.True(t, cfg.Debug.TransformationDebug)
	assert.Equal(t, "source_target_mapping", cfg.Database.Table)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sqljob.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  malcode: ossbr
output:
  dir: build
  manifest_format: yaml
debug:
  joins: false
logging:
  level: debug
`), 0o644))

	cfg, err := load(path, env(map[string]string{
		"SQLJOB_OUTPUT_DIR":       "from-env",
		"SQLJOB_SQL_BY_REFERENCE": "true",
		"DATABASE_URL":            "postgres://localhost/db",
		"SQLJOB_LOG_FORMAT":       "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "ossbr", cfg.Input.Malcode)
	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, "yaml", cfg.Output.ManifestFormat)
	assert.True(t, cfg.Output.SQLByReference)
	assert.False(t, cfg.Debug.JoinDebug)
	assert.True(t, cfg.Debug.TransformationDebug)
	assert.Equal(t, "postgres://localhost/db", cfg.Database.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NotContains(t, cfg.String(), "localhost")
}

func TestLoad_Errors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env(nil))
	require.Error(t, err)

	_, err = load("", env(map[string]string{"SQLJOB_JOIN_DEBUG": "maybe"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SQLJOB_JOIN_DEBUG")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Output.ManifestFormat = "toml"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest format")
	assert.Contains(t, err.Error(), "log level")
}

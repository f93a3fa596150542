package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "acct_dim_job")

	files := []GeneratedFile{
		{Filename: "dt_acct_dim_ossbr.sql", Content: []byte("SELECT 1;\n")},
		{Filename: "audit_acct_dim_ossbr.md", Content: []byte("# report\n")},
	}

	paths, err := WriteFiles(files, dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "dt_acct_dim_ossbr.sql"), paths[0])

	got, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1;\n", string(got))

	files[0].Content = []byte("SELECT 2;\n")
	_, err = WriteFiles(files[:1], dir)
	require.NoError(t, err)

	got, err = os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2;\n", string(got))

	_, err = os.Stat(paths[0] + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

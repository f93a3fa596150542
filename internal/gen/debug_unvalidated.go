package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// writeDebugUnvalidated writes the statement as assembled, before validator
// fixes, to a sidecar file in dir. This is best-effort and should never make
// generation fail.
func writeDebugUnvalidated(dir, filename string, content []byte) error {
	if dir == "" || filename == "" {
		return nil
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return err
	}

	name := strings.TrimSuffix(filename, ".sql") + ".unvalidated.sql"

	return os.WriteFile(filepath.Join(dir, name), content, filePerm)
}

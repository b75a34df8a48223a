package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectScanner(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		"users.json":                     `{"info": {}}`,
		"orders.postman_collection.json": `{"info": {}}`,
		"notes.txt":                      "This is a text file",
		"envs/local.json":                `{"values": []}`,
		"test/users.spec.js":             "describe();",
		".cache/users.json":              "{}",
		"node_modules/chai/package.json": "{}",
	}

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scannedFiles, err := New(tempDir, ".json").Scan()
	require.NoError(t, err)

	var paths []string
	for _, file := range scannedFiles {
		paths = append(paths, file.Path)
		assert.Greater(t, file.Size, int64(0), "File size should be greater than 0")
	}
	assert.Equal(t, []string{
		filepath.Join(tempDir, "envs/local.json"),
		filepath.Join(tempDir, "orders.postman_collection.json"),
		filepath.Join(tempDir, "users.json"),
	}, paths)

	suites, err := New(tempDir, ".js").Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(tempDir, "test/users.spec.js")}, suites)

	all, err := New(filepath.Join(tempDir, "envs")).Scan()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "local", all[0].Name())
}

func TestScanMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing"), ".json").Scan()
	assert.Error(t, err)
}

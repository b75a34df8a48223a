package scaffold

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageJSON(t *testing.T) {
	t.Parallel()

	data, err := PackageJSON("users-api", "test")
	require.NoError(t, err)

	var pkg map[string]any
	require.NoError(t, json.Unmarshal(data, &pkg))
	assert.Equal(t, "users-api", pkg["name"])
	assert.Equal(t, "mocha --require ./setup.js 'test/**/*.spec.js'", pkg["scripts"].(map[string]any)["test"])

	deps := pkg["devDependencies"].(map[string]any)
	for _, name := range []string{"chai", "chai-fetch", "node-fetch", "tv4", "mocha", "dotenv"} {
		assert.Contains(t, deps, name)
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "project")
	written, err := Write(dest, "users", "test")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dest, "setup.js"),
		filepath.Join(dest, "package.json"),
	}, written)

	setup, err := os.ReadFile(filepath.Join(dest, "setup.js"))
	require.NoError(t, err)
	assert.Contains(t, string(setup), `path.join("./env", process.env.env_name + ".env")`)

	require.NoError(t, os.WriteFile(filepath.Join(dest, "package.json"), []byte("{}"), 0o644))
	written, err = Write(dest, "users", "test")
	require.NoError(t, err)
	assert.Empty(t, written)

	kept, err := os.ReadFile(filepath.Join(dest, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, "{}", string(kept))
}

package internal

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cachedIssues = []tt.Issue{{
	Rule:     UntranslatedReference,
	Category: "translation",
	Filename: "test/users.spec.js",
	Message:  "pm.sendRequest has no translation and will fail at run time",
	Severity: tt.SeverityWarning,
	Start:    tt.Position{Offset: 10, Line: 2, Column: 1},
	End:      tt.Position{Offset: 23, Line: 2, Column: 14},
}}

func TestCache(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cacheDir := filepath.Join(tmpDir, "cache", "nested")
	cache, err := NewCache(cacheDir)
	require.NoError(t, err)

	t.Run("SaveAndLoad", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "users.json")
		writeTestFile(t, filename, `{"info": {"name": "users"}}`)

		require.NoError(t, cache.Set(filename, []byte("describe();\n"), cachedIssues))

		entry, found := cache.Get(filename)
		require.True(t, found)
		assert.Equal(t, []byte("describe();\n"), entry.Output)
		assert.Equal(t, cachedIssues, entry.Issues)

		reopened, err := NewCache(cacheDir)
		require.NoError(t, err)
		entry, found = reopened.Get(filename)
		require.True(t, found)
		assert.Equal(t, cachedIssues, entry.Issues)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, found := cache.Get("nonexistent.json")
		assert.False(t, found)
	})

	t.Run("FileModified", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "modified.json")
		writeTestFile(t, filename, `{"item": []}`)
		require.NoError(t, cache.Set(filename, []byte("a"), nil))

		writeTestFile(t, filename, `{"item": [{"name": "new"}]}`)
		_, found := cache.Get(filename)
		assert.False(t, found)
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		filename := filepath.Join(tmpDir, "dropped.json")
		writeTestFile(t, filename, `{}`)
		require.NoError(t, cache.Set(filename, []byte("a"), nil))

		cache.InvalidateAll()
		_, found := cache.Get(filename)
		assert.False(t, found)
	})
}

func TestCacheDependencies(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	rules := filepath.Join(tmpDir, "rules.yaml")
	writeTestFile(t, rules, "rules: []\n")
	filename := filepath.Join(tmpDir, "users.json")
	writeTestFile(t, filename, `{}`)

	cacheDir := filepath.Join(tmpDir, "cache")
	cache, err := NewCache(cacheDir, rules)
	require.NoError(t, err)
	require.NoError(t, cache.Set(filename, []byte("a"), nil))

	_, found := cache.Get(filename)
	require.True(t, found)

	writeTestFile(t, rules, "rules:\n  - name: x\n")
	_, found = cache.Get(filename)
	assert.False(t, found, "a changed rule table invalidates entries")

	reopened, err := NewCache(cacheDir, rules)
	require.NoError(t, err)
	_, found = reopened.Get(filename)
	assert.False(t, found, "entries written under other rules are dropped on load")

	require.NoError(t, reopened.Set(filename, []byte("b"), nil))
	entry, found := reopened.Get(filename)
	require.True(t, found)
	assert.Equal(t, []byte("b"), entry.Output)
}

func TestCacheConcurrency(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()

	cache, err := NewCache(filepath.Join(tmpDir, "cache"))
	require.NoError(t, err)

	testFile := filepath.Join(tmpDir, "users.json")
	writeTestFile(t, testFile, `{}`)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, cache.Set(testFile, []byte("a"), cachedIssues))
		}()
		go func() {
			defer wg.Done()
			_, _ = cache.Get(testFile)
		}()
	}
	wg.Wait()
}

func writeTestFile(t *testing.T, filename string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filename, []byte(content), 0o644))
}

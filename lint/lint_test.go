package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Run(filePath string) ([]types.Issue, error) {
	args := m.Called(filePath)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockEngine) RunSource(source []byte) ([]types.Issue, error) {
	args := m.Called(source)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockEngine) Convert(src, dest string, defaults ...collection.KeyValue) ([]types.Issue, error) {
	args := m.Called(src, dest, defaults)
	return args.Get(0).([]types.Issue), args.Error(1)
}

func (m *mockEngine) ConvertEnvironment(src, dest string) error {
	return m.Called(src, dest).Error(0)
}

func (m *mockEngine) IgnoreRule(rule string) {
	m.Called(rule)
}

func testIssue(rule, filename string) types.Issue {
	return types.Issue{
		Rule:     rule,
		Filename: filename,
		Start:    types.Position{Offset: 0, Line: 1, Column: 1},
		End:      types.Position{Offset: 10, Line: 1, Column: 11},
		Message:  "Test issue",
		Severity: types.SeverityWarning,
	}
}

func TestProcessFile(t *testing.T) {
	t.Parallel()
	expectedIssues := []types.Issue{testIssue("test-rule", "users.spec.js")}
	engine := new(mockEngine)
	engine.On("Run", "users.spec.js").Return(expectedIssues, nil)

	issues, err := ProcessFile(engine, "users.spec.js")

	assert.NoError(t, err)
	assert.Equal(t, expectedIssues, issues)
	engine.AssertExpectations(t)
}

func TestProcessSources(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()

	first := testIssue("rule1", "")
	second := testIssue("rule2", "")

	engine := new(mockEngine)
	engine.On("RunSource", []byte("pm.a;")).Return([]types.Issue{first}, nil)
	engine.On("RunSource", []byte("pm.b;")).Return([]types.Issue{second}, nil)

	issues, err := ProcessSources(context.Background(), logger, engine, [][]byte{[]byte("pm.a;"), []byte("pm.b;")}, ProcessSource)

	assert.NoError(t, err)
	assert.Equal(t, []types.Issue{first, second}, issues)
	engine.AssertExpectations(t)
}

func TestProcessPath(t *testing.T) {
	t.Parallel()
	logger, _ := zap.NewDevelopment()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.spec.js", "b.spec.js", "notes.txt")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return([]types.Issue{testIssue("rule1", paths[0])}, nil)
	engine.On("Run", paths[1]).Return([]types.Issue{testIssue("rule2", paths[1])}, nil)

	issues, err := ProcessPath(context.Background(), logger, engine, tempDir, CheckExtensions, ProcessFile)

	assert.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Contains(t, issues, testIssue("rule1", paths[0]))
	assert.Contains(t, issues, testIssue("rule2", paths[1]))
	engine.AssertExpectations(t)
	engine.AssertNotCalled(t, "Run", paths[2])
}

func TestProcessPathPartialFailure(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "good.spec.js", "bad.spec.js")
	boom := errors.New("boom")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return([]types.Issue{testIssue("rule1", paths[0])}, nil)
	engine.On("Run", paths[1]).Return([]types.Issue(nil), boom)

	issues, err := ProcessPath(context.Background(), nil, engine, tempDir, CheckExtensions, ProcessFile)

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), paths[1])
	assert.Equal(t, []types.Issue{testIssue("rule1", paths[0])}, issues)
}

func TestProcessPathSingleFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "bad.spec.js", "skip.txt")
	boom := errors.New("boom")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return([]types.Issue(nil), boom)

	issues, err := ProcessPath(context.Background(), nil, engine, paths[0], CheckExtensions, ProcessFile)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []types.Issue{}, issues)

	issues, err = ProcessPath(context.Background(), nil, engine, paths[1], CheckExtensions, ProcessFile)
	assert.NoError(t, err)
	assert.Empty(t, issues)

	_, err = ProcessPath(context.Background(), nil, engine, filepath.Join(tempDir, "missing.js"), CheckExtensions, ProcessFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPathCancelled(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	createTempFiles(t, tempDir, "a.spec.js", "b.spec.js", "c.spec.js")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := new(mockEngine)
	engine.On("Run", mock.Anything).Return([]types.Issue{}, nil).Maybe()

	issues, err := ProcessPath(ctx, nil, engine, tempDir, CheckExtensions, ProcessFile)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, issues)
}

func TestProcessFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	paths := createTempFiles(t, tempDir, "a.spec.js", "b.spec.js")
	missing := filepath.Join(tempDir, "missing.spec.js")

	engine := new(mockEngine)
	engine.On("Run", paths[0]).Return([]types.Issue{testIssue("rule1", paths[0])}, nil)
	engine.On("Run", paths[1]).Return([]types.Issue{testIssue("rule2", paths[1])}, nil)

	issues, err := ProcessFiles(context.Background(), nil, engine, []string{paths[0], missing, paths[1]}, CheckExtensions, ProcessFile)

	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, []types.Issue{testIssue("rule1", paths[0]), testIssue("rule2", paths[1])}, issues)
}

func TestConvertTo(t *testing.T) {
	t.Parallel()

	defaults := []collection.KeyValue{{Key: "base", Value: "http://localhost"}}
	engine := new(mockEngine)
	engine.On("Convert", "in/users.postman_collection.json", filepath.Join("out", "users.spec.js"), defaults).
		Return([]types.Issue{}, nil)

	_, err := ConvertTo("out", defaults...)(engine, "in/users.postman_collection.json")
	require.NoError(t, err)
	engine.AssertExpectations(t)
}

func TestEnvironmentTo(t *testing.T) {
	t.Parallel()

	engine := new(mockEngine)
	engine.On("ConvertEnvironment", "envs/local.json", filepath.Join("env", "local.env")).Return(nil)

	issues, err := EnvironmentTo("env")(engine, "envs/local.json")
	require.NoError(t, err)
	assert.Empty(t, issues)
	engine.AssertExpectations(t)
}

func TestBaseName(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"users.json":                         "users",
		"dir/Orders.postman_collection.json": "Orders",
		"local.postman_environment.json":     "local",
		"noext":                              "noext",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseName(in), in)
	}
	assert.Equal(t, filepath.Join("test", "users.spec.js"), SuitePath("test", "a/users.json"))
}

func TestFatal(t *testing.T) {
	t.Parallel()

	warning := testIssue("w", "a.js")
	errIssue := warning
	errIssue.Severity = types.SeverityError
	info := warning
	info.Severity = types.SeverityInfo

	assert.False(t, Fatal(nil, true))
	assert.False(t, Fatal([]types.Issue{warning, info}, false))
	assert.True(t, Fatal([]types.Issue{warning}, true))
	assert.True(t, Fatal([]types.Issue{info, errIssue}, false))
}

func TestHasExtension(t *testing.T) {
	t.Parallel()
	assert.True(t, hasExtension("users.spec.js", CheckExtensions))
	assert.True(t, hasExtension("users.json", CollectionExtensions))
	assert.False(t, hasExtension("users.txt", CheckExtensions))
	assert.True(t, hasExtension("anything", nil))
}

func createTempFiles(t *testing.T, dir string, fileNames ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(dir, fileName)
		require.NoError(t, os.WriteFile(filePath, []byte("x"), 0o644))
		paths = append(paths, filePath)
	}
	return paths
}

// Package lint drives the conversion engine over files and directories:
// converting collections and environments, and checking generated suites.
package lint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/config"
	"github.com/gnolang/pmconv/internal"
	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/gnolang/pmconv/scanner"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const maxShowRecentFiles = 25

var (
	// CheckExtensions are the files the check command looks at.
	CheckExtensions = []string{".js"}
	// CollectionExtensions are the files holding collections and
	// environments.
	CollectionExtensions = []string{".json"}
)

// Engine converts collections and checks generated suites.
type Engine interface {
	Run(filePath string) ([]tt.Issue, error)
	RunSource(source []byte) ([]tt.Issue, error)
	Convert(src, dest string, defaults ...collection.KeyValue) ([]tt.Issue, error)
	ConvertEnvironment(src, dest string) error
	IgnoreRule(rule string)
}

// Processor handles one file.
type Processor func(Engine, string) ([]tt.Issue, error)

// Progress is where directory processing draws its progress bar. Nil
// disables it.
var Progress io.Writer = os.Stderr

// New loads the configuration at configPath, falling back to the defaults
// when the file does not exist, and builds an engine from it.
func New(configPath string, logger *zap.Logger) (*internal.Engine, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	return internal.NewEngine(cfg, logger)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) ([]tt.Issue, error),
) ([]tt.Issue, error) {
	var allIssues []tt.Issue
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return allIssues, err
		}
		issues, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		allIssues = append(allIssues, issues...)
	}

	return allIssues, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	exts []string,
	processor Processor,
) ([]tt.Issue, error) {
	var (
		allIssues []tt.Issue
		errs      []error
	)
	for _, path := range paths {
		issues, err := ProcessPath(ctx, logger, engine, path, exts, processor)
		allIssues = append(allIssues, issues...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			if ctx.Err() != nil {
				return allIssues, err
			}
			errs = append(errs, err)
		}
	}

	return allIssues, errors.Join(errs...)
}

// ProcessPath runs processor on path, or on every matching file below it
// when it is a directory. Files are processed concurrently; results of the
// files that succeeded are returned together with the joined errors of
// the ones that failed.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	exts []string,
	processor Processor,
) ([]tt.Issue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !hasExtension(path, exts) {
			return []tt.Issue{}, nil
		}
		fileIssues, err := processor(engine, path)
		if err != nil {
			return []tt.Issue{}, err
		}
		return fileIssues, nil
	}

	files, err := scanner.New(path, exts...).Paths()
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	type result struct {
		issues []tt.Issue
		err    error
	}
	results := make(chan result, len(files))

	display := newRecentFiles(Progress)
	bar := newProgressBar(Progress, path, len(files))

	// limit the number of workers
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	scheduled := 0
schedule:
	for _, filePath := range files {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		scheduled++
		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			display.add(filepath.Base(fp))

			fileIssues, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				err = fmt.Errorf("%s: %w", fp, err)
			}
			results <- result{issues: fileIssues, err: err}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(filePath)
	}
	wg.Wait()
	close(results)

	issues := []tt.Issue{}
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		issues = append(issues, r.issues...)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if scheduled < len(files) {
		return issues, ctx.Err()
	}
	return issues, errors.Join(errs...)
}

func newProgressBar(w io.Writer, description string, n int) *progressbar.ProgressBar {
	if w == nil {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

// recentFiles keeps the names of the last files started above the
// progress bar.
type recentFiles struct {
	mu    sync.Mutex
	w     io.Writer
	names []string
}

func newRecentFiles(w io.Writer) *recentFiles {
	r := &recentFiles{w: w, names: make([]string, maxShowRecentFiles)}
	if w == nil {
		return r
	}
	// make space for recent files
	for range maxShowRecentFiles + 1 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\033[%dA", maxShowRecentFiles+1)
	return r
}

func (r *recentFiles) add(name string) {
	if r.w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.names[1:], r.names[:len(r.names)-1])
	r.names[0] = name

	// move the cursor up
	fmt.Fprintf(r.w, "\033[%dA", maxShowRecentFiles)
	for _, n := range r.names {
		// \033[2K: clear the line, \r: back to column one
		fmt.Fprintf(r.w, "\033[2K\r%s\n", n)
	}
}

// ProcessFile checks a generated suite.
func ProcessFile(engine Engine, filePath string) ([]tt.Issue, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) ([]tt.Issue, error) {
	return engine.RunSource(source)
}

// ConvertTo returns a processor that writes the suite for each collection
// to testDir/<name>.spec.js.
func ConvertTo(testDir string, defaults ...collection.KeyValue) Processor {
	return func(engine Engine, src string) ([]tt.Issue, error) {
		return engine.Convert(src, SuitePath(testDir, src), defaults...)
	}
}

// EnvironmentTo returns a processor that writes each environment to
// envDir/<name>.env.
func EnvironmentTo(envDir string) Processor {
	return func(engine Engine, src string) ([]tt.Issue, error) {
		return nil, engine.ConvertEnvironment(src, filepath.Join(envDir, BaseName(src)+".env"))
	}
}

// SuitePath is the suite file a collection is converted to.
func SuitePath(testDir, src string) string {
	return filepath.Join(testDir, BaseName(src)+".spec.js")
}

// BaseName strips the directory, the extension and the suffix the
// collection runner adds to exported files.
func BaseName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSuffix(name, ".postman_collection")
	name = strings.TrimSuffix(name, ".postman_environment")
	return name
}

// Fatal reports whether issues should fail the run: any error, or any
// warning when strict is set.
func Fatal(issues []tt.Issue, strict bool) bool {
	for _, issue := range issues {
		switch issue.Severity {
		case tt.SeverityError:
			return true
		case tt.SeverityWarning:
			if strict {
				return true
			}
		}
	}
	return false
}

func hasExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}

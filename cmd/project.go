package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/gnolang/pmconv/internal"
	"github.com/gnolang/pmconv/lint"
	"github.com/gnolang/pmconv/scaffold"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	projectCollections  []string
	projectEnvironments []string
	watchProject        bool
	cacheDir            string
)

var projectCmd = &cobra.Command{
	Use:   "project <dest>",
	Short: "Convert a whole project",
	Long: `Writes a runnable mocha project to dest: the runtime setup, package.json,
one suite per collection under the test directory and one dotenv file per
environment under the env directory.
Example) pmconv project out -c collections/ -e envs/local.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := lint.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		if cacheDir != "" {
			if err := engine.EnableCache(cacheDir, cfgFile); err != nil {
				return fmt.Errorf("opening cache: %w", err)
			}
		}

		cfg := engine.Config()
		opts := projectOptions{
			Dest:         args[0],
			Collections:  projectCollections,
			Environments: projectEnvironments,
			TestDir:      cfg.Output.TestDir,
			EnvDir:       cfg.Output.EnvDir,
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		err = runProject(ctx, cmd.OutOrStdout(), logger, engine, opts, cfg.Strict)
		cancel()
		if !watchProject {
			return err
		}
		if err != nil && !errors.Is(err, errIssuesFound) {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = watch(ctx, cmd.OutOrStdout(), logger, engine, opts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	projectCmd.Flags().StringSliceVarP(&projectCollections, "collection", "c", nil, "Collection files or directories to include")
	projectCmd.Flags().StringSliceVarP(&projectEnvironments, "environment", "e", nil, "Environment files or directories to include")
	projectCmd.Flags().BoolVarP(&watchProject, "watch", "w", false, "Convert again whenever an input changes")
	projectCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Reuse suites of unchanged collections stored in this directory")
}

type projectOptions struct {
	Dest         string
	Collections  []string
	Environments []string
	TestDir      string
	EnvDir       string
}

func (o projectOptions) testDir() string { return filepath.Join(o.Dest, o.TestDir) }
func (o projectOptions) envDir() string  { return filepath.Join(o.Dest, o.EnvDir) }

// runProject scaffolds dest and converts every collection and environment
// into it. A failing input does not stop the others.
func runProject(ctx context.Context, w io.Writer, logger *zap.Logger, engine lint.Engine, opts projectOptions, strict bool) error {
	name := filepath.Base(opts.Dest)
	if abs, err := filepath.Abs(opts.Dest); err == nil {
		name = filepath.Base(abs)
	}
	written, err := scaffold.Write(opts.Dest, name, opts.TestDir)
	if err != nil {
		return fmt.Errorf("writing project files: %w", err)
	}
	for _, path := range written {
		logger.Info("project file written", zap.String("file", path))
	}
	for _, dir := range []string{opts.testDir(), opts.envDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	issues, convErr := lint.ProcessFiles(ctx, logger, engine, opts.Collections, lint.CollectionExtensions, lint.ConvertTo(opts.testDir()))
	_, envErr := lint.ProcessFiles(ctx, logger, engine, opts.Environments, lint.CollectionExtensions, lint.EnvironmentTo(opts.envDir()))

	if err := printIssues(w, logger, issues, false, ""); err != nil {
		return err
	}
	if err := errors.Join(convErr, envErr); err != nil {
		return err
	}
	if lint.Fatal(issues, strict) {
		return errIssuesFound
	}
	return nil
}

// watch converts collections and environments again as they change until
// ctx is done.
func watch(ctx context.Context, w io.Writer, logger *zap.Logger, engine lint.Engine, opts projectOptions) error {
	var mu sync.Mutex
	onChange := func(path string) {
		processor, ok := opts.processorFor(path)
		if !ok {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		issues, err := lint.ProcessPath(ctx, logger, engine, path, lint.CollectionExtensions, processor)
		if err != nil {
			logger.Error("Error converting changed file", zap.String("file", path), zap.Error(err))
			return
		}
		logger.Info("converted", zap.String("file", path))
		if err := printIssues(w, logger, issues, false, ""); err != nil {
			logger.Error("Error printing issues", zap.Error(err))
		}
	}

	watcher, err := internal.NewWatcher(logger, opts.watchDirs(), lint.CollectionExtensions, onChange)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Watching for changes. Press Ctrl+C to stop.")
	return watcher.Run(ctx)
}

// processorFor picks the conversion for a changed file from the input it
// belongs to. Environments win when a file is listed as both.
func (o projectOptions) processorFor(path string) (lint.Processor, bool) {
	for _, in := range o.Environments {
		if covers(in, path) {
			return lint.EnvironmentTo(o.envDir()), true
		}
	}
	for _, in := range o.Collections {
		if covers(in, path) {
			return lint.ConvertTo(o.testDir()), true
		}
	}
	return nil, false
}

func (o projectOptions) watchDirs() []string {
	seen := make(map[string]bool)
	for _, in := range append(append([]string{}, o.Collections...), o.Environments...) {
		dir := filepath.Clean(in)
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		seen[dir] = true
	}
	dirs := make([]string, 0, len(seen))
	for dir := range seen {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

// covers reports whether path is input itself or lies below it.
func covers(input, path string) bool {
	input, path = filepath.Clean(input), filepath.Clean(path)
	if input == path {
		return true
	}
	rel, err := filepath.Rel(input, path)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

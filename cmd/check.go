package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/pmconv/formatter"
	"github.com/gnolang/pmconv/internal"
	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/gnolang/pmconv/lint"
)

var (
	ignoreRules     string
	checkJsonOutput bool
	outPath         string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Check generated suites for references the translation left behind",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := lint.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		ignore(engine, ignoreRules)

		return runCheck(ctx, cmd.OutOrStdout(), logger, engine, args, engine.Config().Strict, checkJsonOutput, outPath)
	},
}

func init() {
	checkCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of check rules to ignore")
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
}

func ignore(engine lint.Engine, rules string) {
	if rules == "" {
		return
	}
	for _, rule := range strings.Split(rules, ",") {
		engine.IgnoreRule(strings.TrimSpace(rule))
	}
}

func runCheck(ctx context.Context, w io.Writer, logger *zap.Logger, engine lint.Engine, paths []string, strict bool, isJson bool, jsonOutput string) error {
	issues, err := lint.ProcessFiles(ctx, logger, engine, paths, lint.CheckExtensions, lint.ProcessFile)
	if err != nil {
		return err
	}

	if err := printIssues(w, logger, issues, isJson, jsonOutput); err != nil {
		return err
	}

	if lint.Fatal(issues, strict) {
		return errIssuesFound
	}
	return nil
}

func printIssues(w io.Writer, logger *zap.Logger, issues []tt.Issue, isJson bool, jsonOutput string) error {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	if isJson {
		d, err := json.Marshal(issuesByFile)
		if err != nil {
			return fmt.Errorf("marshalling issues to JSON: %w", err)
		}
		if jsonOutput == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		return os.WriteFile(jsonOutput, d, 0o644)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	for _, filename := range sortedFiles {
		fileIssues := issuesByFile[filename]
		sourceCode, err := internal.ReadSourceCode(filename)
		if err != nil {
			logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedIssue(fileIssues, sourceCode))
	}
	return nil
}

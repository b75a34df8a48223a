package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/config"
	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/gnolang/pmconv/rewriter"
	"github.com/gnolang/pmconv/suite"
	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
	"go.uber.org/zap"
)

// Engine converts collections and checks the generated suites.
type Engine struct {
	cfg          config.Config
	logger       *zap.Logger
	rw           *rewriter.Rewriter
	ignoredRules map[string]bool
	rules        map[string]CheckRule
	cache        *Cache
}

// NewEngine builds the rule table described by cfg and an engine around it.
func NewEngine(cfg config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	table, err := buildTable(cfg.Rules)
	if err != nil {
		return nil, err
	}

	rw := rewriter.New(table)
	if cfg.MaxRewrites > 0 {
		rw.MaxRewrites = cfg.MaxRewrites
	}
	rw.OnRewrite = func(rule string, before, after js.INode) {
		if ce := logger.Check(zap.DebugLevel, "rewrite"); ce != nil {
			ce.Write(
				zap.String("rule", rule),
				zap.String("before", syntax.Source(before)),
				zap.String("after", syntax.Source(after)),
			)
		}
	}

	engine := &Engine{cfg: cfg, logger: logger, rw: rw}
	engine.applyRules(cfg.Checks)
	return engine, nil
}

func buildTable(rules config.Rules) (*rewriter.Table, error) {
	if rules.File == "" {
		return rewriter.DefaultTable()
	}
	user, err := rewriter.Load(rules.File)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	specs := user
	if rules.Mode != config.ModeReplace {
		specs = append(rewriter.DefaultSpecs(), user...)
	}
	table, err := rewriter.Build(specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rules.File, err)
	}
	return table, nil
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) {
	e.rules = make(map[string]CheckRule)
	for key, newRule := range allRuleConstructors {
		e.rules[key] = newRule()
	}

	for key, rule := range rules {
		r, ok := e.rules[key]
		if !ok {
			e.logger.Warn("unknown check rule in config", zap.String("rule", key))
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
}

// EnableCache stores generated suites under dir. The config file and the
// rules file are tracked as cache dependencies.
func (e *Engine) EnableCache(dir string, configPath string) error {
	var deps []string
	if _, err := os.Stat(configPath); err == nil {
		deps = append(deps, configPath)
	}
	if e.cfg.Rules.File != "" {
		deps = append(deps, e.cfg.Rules.File)
	}
	cache, err := NewCache(dir, deps...)
	if err != nil {
		return err
	}
	e.cache = cache
	return nil
}

func (e *Engine) Config() config.Config { return e.cfg }

func (e *Engine) Table() *rewriter.Table { return e.rw.Table() }

// CheckRules lists the output check rules by name.
func (e *Engine) CheckRules() []CheckRule {
	names := make([]string, 0, len(e.rules))
	for name := range e.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]CheckRule, 0, len(names))
	for _, name := range names {
		out = append(out, e.rules[name])
	}
	return out
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// Generate converts a parsed collection into a suite program.
func (e *Engine) Generate(c *collection.Collection, defaults []collection.KeyValue) (*js.AST, error) {
	return suite.New(e.rw, defaults, e.logger).Generate(c)
}

// Convert generates the suite for the collection at src, writes it to
// dest and checks the result. defaults are baked into the suite's
// environment map.
func (e *Engine) Convert(src, dest string, defaults ...collection.KeyValue) ([]tt.Issue, error) {
	useCache := e.cache != nil && len(defaults) == 0
	if useCache {
		if entry, ok := e.cache.Get(src); ok {
			e.logger.Debug("cache hit", zap.String("collection", src))
			if err := writeFile(dest, entry.Output); err != nil {
				return nil, err
			}
			return withFilename(entry.Issues, dest), nil
		}
	}

	c, err := collection.Load(src)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", src, err)
	}
	ast, err := e.Generate(c, defaults)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	out := syntax.Print(ast)
	if err := writeFile(dest, out); err != nil {
		return nil, err
	}
	e.logger.Info("suite written",
		zap.String("collection", src),
		zap.String("suite", dest),
		zap.Int("bytes", len(out)))

	issues := e.check(dest, out)
	if useCache {
		if err := e.cache.Set(src, out, issues); err != nil {
			e.logger.Warn("cache update failed", zap.String("collection", src), zap.Error(err))
		}
	}
	return issues, nil
}

// ConvertEnvironment writes the enabled values of the environment at src
// as a dotenv file at dest.
func (e *Engine) ConvertEnvironment(src, dest string) error {
	env, err := collection.LoadEnvironment(src)
	if err != nil {
		return fmt.Errorf("loading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := env.WriteDotenv(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	e.logger.Info("environment written", zap.String("environment", src), zap.String("dotenv", dest))
	return f.Close()
}

// Run checks a generated suite on disk.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return e.check(filename, src), nil
}

// RunSource checks generated suite source.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.check("", source), nil
}

func (e *Engine) check(filename string, src []byte) []tt.Issue {
	if _, err := syntax.ParseScript(string(src)); err != nil {
		return []tt.Issue{invalidScriptIssue(filename, err)}
	}

	tokens := tokenize(src)
	nolint := parseNolintComments(tokens)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		allIssues []tt.Issue
	)
	for _, rule := range e.rules {
		if e.ignoredRules[rule.Name()] {
			continue
		}
		wg.Add(1)
		go func(r CheckRule) {
			defer wg.Done()
			issues := filterNolintIssues(nolint, r.Check(filename, tokens))

			mu.Lock()
			allIssues = append(allIssues, issues...)
			mu.Unlock()
		}(rule)
	}
	wg.Wait()

	sort.SliceStable(allIssues, func(i, j int) bool {
		a, b := allIssues[i], allIssues[j]
		if a.Start.Offset != b.Start.Offset {
			return a.Start.Offset < b.Start.Offset
		}
		return a.Rule < b.Rule
	})
	return allIssues
}

func invalidScriptIssue(filename string, err error) tt.Issue {
	issue := tt.Issue{
		Rule:     InvalidScript,
		Category: "syntax",
		Filename: filename,
		Message:  err.Error(),
		Severity: tt.SeverityError,
		Start:    tt.Position{Line: 1, Column: 1},
	}
	var perr *parse.Error
	if errors.As(err, &perr) {
		issue.Message = perr.Message
		issue.Start = tt.Position{Line: perr.Line, Column: perr.Column}
	}
	issue.End = issue.Start
	return issue
}

// filterNolintIssues drops issues silenced by nolint comments.
func filterNolintIssues(m *nolintManager, issues []tt.Issue) []tt.Issue {
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !m.IsNolint(issue.Start.Line, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

func withFilename(issues []tt.Issue, filename string) []tt.Issue {
	out := make([]tt.Issue, len(issues))
	for i, issue := range issues {
		issue.Filename = filename
		out[i] = issue
	}
	return out
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

func NewSourceCode(content []byte) *SourceCode {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return &SourceCode{Lines: strings.Split(text, "\n")}
}

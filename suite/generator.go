// Package suite turns a collection item tree into a mocha test program.
package suite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/rewriter"
	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
	"go.uber.org/zap"
)

var ErrEmptyURL = errors.New("request has no url")

// ItemError reports a failure while generating one item.
type ItemError struct {
	Path  []string
	Event string
	Err   error
}

func (e *ItemError) Error() string {
	where := strings.Join(e.Path, " / ")
	if e.Event != "" {
		return fmt.Sprintf("%s: %s script: %v", where, e.Event, e.Err)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Generator builds suites. It holds no per-run state and may be shared.
type Generator struct {
	rw       *rewriter.Rewriter
	defaults []collection.KeyValue
	logger   *zap.Logger
}

// New returns a generator that translates scripts with rw. Defaults seed
// the environment map after the collection's own variables.
func New(rw *rewriter.Rewriter, defaults []collection.KeyValue, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{rw: rw, defaults: defaults, logger: logger}
}

// Generate returns the program for c: the preamble followed by one
// describe group per top level item. No partial program is returned on
// error.
func (g *Generator) Generate(c *collection.Collection) (*js.AST, error) {
	defaults := append(c.Defaults(), g.defaults...)
	stmts := Preamble(defaults)
	for i := range c.Items {
		group, err := g.item(nil, &c.Items[i])
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, group...)
	}
	return syntax.Program(stmts...), nil
}

// item returns the describe statement for it, preceded by its doc comment
// when it has a description.
func (g *Generator) item(parent []string, it *collection.Item) ([]js.IStmt, error) {
	path := append(append([]string(nil), parent...), it.Name)
	g.logger.Debug("generating item", zap.Strings("path", path))

	var body []js.IStmt
	if !it.IsFolder() {
		if it.Request.URL.IsZero() {
			return nil, &ItemError{Path: path, Err: ErrEmptyURL}
		}
		pre, err := g.script(path, it, collection.ListenPrerequest)
		if err != nil {
			return nil, err
		}
		body = append(body, declarations()...)
		body = append(body, setupBlock(it.Request, pre))
	}

	for i := range it.Items {
		group, err := g.item(path, &it.Items[i])
		if err != nil {
			return nil, err
		}
		body = append(body, group...)
	}

	tests, err := g.script(path, it, collection.ListenTest)
	if err != nil {
		return nil, err
	}
	body = append(body, tests...)

	describe := syntax.Stmt(syntax.Call(syntax.Ident("describe"), syntax.Str(it.Name), syntax.Arrow(false, body...)))
	if doc := description(it); doc != "" {
		return []js.IStmt{syntax.DocComment(doc), describe}, nil
	}
	return []js.IStmt{describe}, nil
}

// script concatenates the item's scripts of one kind, parses them once and
// rewrites the result.
func (g *Generator) script(path []string, it *collection.Item, listen string) ([]js.IStmt, error) {
	sources := it.Scripts(listen)
	if len(sources) == 0 {
		return nil, nil
	}
	stmts, err := g.rw.RewriteScript(strings.Join(sources, "\n"))
	if err != nil {
		return nil, &ItemError{Path: path, Event: listen, Err: err}
	}
	return stmts, nil
}

func description(it *collection.Item) string {
	if it.Request != nil && it.Request.Description != "" {
		return string(it.Request.Description)
	}
	return string(it.Description)
}

package rewriter

import (
	"errors"
	"fmt"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// DefaultMaxRewrites bounds how many times a single node may be replaced
// before the rewriter gives up.
const DefaultMaxRewrites = 32

var ErrRewriteLimit = errors.New("rewrite limit exceeded")

// Rewriter applies a rule table to whole scripts.
type Rewriter struct {
	table *Table
	// MaxRewrites is the per-node replacement budget. Zero means
	// DefaultMaxRewrites.
	MaxRewrites int
	// OnRewrite, when set, is called after every replacement.
	OnRewrite func(rule string, before, after js.INode)
}

func New(table *Table) *Rewriter {
	return &Rewriter{table: table, MaxRewrites: DefaultMaxRewrites}
}

func (rw *Rewriter) Table() *Table { return rw.table }

// Rewrite translates a statement list in one top-down pass. At each node
// the table is applied until no rule matches any more, then the pass goes
// on into the children of whatever node is left. The input is not
// modified.
func (rw *Rewriter) Rewrite(stmts []js.IStmt) ([]js.IStmt, error) {
	return rw.mapper().stmts(stmts)
}

// RewriteScript parses src and rewrites its statements.
func (rw *Rewriter) RewriteScript(src string) ([]js.IStmt, error) {
	ast, err := syntax.ParseScript(src)
	if err != nil {
		return nil, err
	}
	return rw.Rewrite(ast.List)
}

func (rw *Rewriter) mapper() mapper {
	var m mapper
	m = mapper{
		expr: func(e js.IExpr) (js.IExpr, error) {
			n, err := rw.settle(e)
			if err != nil {
				return nil, err
			}
			expr, ok := syntax.AsExpr(n)
			if !ok {
				return nil, fmt.Errorf("replacement %q is not an expression", syntax.Source(n))
			}
			r, err := m.children(expr)
			if err != nil {
				return nil, err
			}
			return r.(js.IExpr), nil
		},
		stmt: func(s js.IStmt) (js.IStmt, error) {
			n, err := rw.settle(s)
			if err != nil {
				return nil, err
			}
			stmt, ok := syntax.AsStmt(n)
			if !ok {
				return nil, fmt.Errorf("replacement %q is not a statement", syntax.Source(n))
			}
			r, err := m.children(stmt)
			if err != nil {
				return nil, err
			}
			return r.(js.IStmt), nil
		},
	}
	return m
}

// settle applies the table to n until nothing matches.
func (rw *Rewriter) settle(n js.INode) (js.INode, error) {
	limit := rw.MaxRewrites
	if limit <= 0 {
		limit = DefaultMaxRewrites
	}
	for i := 0; ; i++ {
		out, rule, ok, err := rw.table.Apply(n)
		if err != nil {
			return nil, err
		}
		if !ok {
			return n, nil
		}
		if i == limit {
			return nil, fmt.Errorf("%w: rule %q still matches %q after %d replacements",
				ErrRewriteLimit, rule, syntax.Source(n), limit)
		}
		if rw.OnRewrite != nil {
			rw.OnRewrite(rule, n, out)
		}
		n = out
	}
}

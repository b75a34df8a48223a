package rewriter

import (
	"fmt"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// Template is a parsed replacement source whose placeholders are filled in
// from a match.
type Template struct {
	src  string
	root js.INode
}

// CompileTemplate parses a single statement or expression template.
func CompileTemplate(src string) (*Template, error) {
	root, err := syntax.ParseNode(src)
	if err != nil {
		return nil, fmt.Errorf("invalid template %q: %w", src, err)
	}
	return &Template{src: src, root: root}, nil
}

// MustCompileTemplate is like CompileTemplate but panics on error.
func MustCompileTemplate(src string) *Template {
	t, err := CompileTemplate(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) String() string { return t.src }

// Instantiate returns a fresh copy of the template with every bound
// placeholder replaced by its capture. Unbound placeholders are kept.
func (t *Template) Instantiate(b Bindings) (js.INode, error) {
	in := instantiator{bindings: b}
	m := in.mapper()
	switch root := t.root.(type) {
	case js.IStmt:
		return m.stmt(root)
	case js.IExpr:
		return m.expr(root)
	}
	return t.root, nil
}

type instantiator struct {
	bindings Bindings
}

func (in instantiator) mapper() mapper {
	var m mapper
	m = mapper{
		expr: func(e js.IExpr) (js.IExpr, error) {
			if bound, ok := in.lookup(e); ok {
				expr, ok := syntax.AsExpr(bound)
				if !ok {
					return nil, fmt.Errorf("capture %q is not an expression", syntax.Source(bound))
				}
				return expr, nil
			}
			r, err := m.children(e)
			if err != nil {
				return nil, err
			}
			return r.(js.IExpr), nil
		},
		stmt: func(s js.IStmt) (js.IStmt, error) {
			// a lone placeholder statement takes the capture whole
			if es, ok := s.(*js.ExprStmt); ok {
				if bound, ok := in.lookup(es.Value); ok {
					stmt, ok := syntax.AsStmt(bound)
					if !ok {
						return nil, fmt.Errorf("capture %q is not a statement", syntax.Source(bound))
					}
					return stmt, nil
				}
			}
			r, err := m.children(s)
			if err != nil {
				return nil, err
			}
			return r.(js.IStmt), nil
		},
		prop: func(y js.IExpr) (js.IExpr, error) {
			bound, ok := in.lookup(y)
			if !ok {
				return y, nil
			}
			name, ok := syntax.IdentName(syntax.Unwrap(bound))
			if !ok {
				return nil, fmt.Errorf("capture %q cannot be used as a property name", syntax.Source(bound))
			}
			return syntax.PropName(name), nil
		},
	}
	return m
}

func (in instantiator) lookup(n js.INode) (js.INode, bool) {
	name, ok := placeholderName(n)
	if !ok {
		return nil, false
	}
	bound, ok := in.bindings[name]
	return bound, ok
}

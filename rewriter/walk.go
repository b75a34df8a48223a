package rewriter

import (
	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// mapper rebuilds nodes bottom-up without touching the originals. The
// callbacks receive each direct child; children returns a shallow copy of
// the node with the results plugged back in.
type mapper struct {
	expr func(js.IExpr) (js.IExpr, error)
	stmt func(js.IStmt) (js.IStmt, error)
	// prop maps the name on the right of a member access. nil keeps it.
	prop func(js.IExpr) (js.IExpr, error)
}

func (m mapper) optExpr(e js.IExpr) (js.IExpr, error) {
	if e == nil {
		return nil, nil
	}
	return m.expr(e)
}

func (m mapper) optStmt(s js.IStmt) (js.IStmt, error) {
	if s == nil {
		return nil, nil
	}
	return m.stmt(s)
}

// operand maps the object of a member access or a callee, keeping the
// result parenthesised where precedence requires it.
func (m mapper) operand(e js.IExpr) (js.IExpr, error) {
	r, err := m.expr(e)
	if err != nil {
		return nil, err
	}
	return syntax.Operand(r), nil
}

func (m mapper) stmts(list []js.IStmt) ([]js.IStmt, error) {
	if list == nil {
		return nil, nil
	}
	out := make([]js.IStmt, len(list))
	for i, s := range list {
		r, err := m.stmt(s)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (m mapper) block(b js.BlockStmt) (js.BlockStmt, error) {
	list, err := m.stmts(b.List)
	if err != nil {
		return b, err
	}
	b.List = list
	return b, nil
}

func (m mapper) blockPtr(b *js.BlockStmt) (*js.BlockStmt, error) {
	if b == nil {
		return nil, nil
	}
	nb, err := m.block(*b)
	if err != nil {
		return nil, err
	}
	return &nb, nil
}

func (m mapper) args(a js.Args) (js.Args, error) {
	out := js.Args{List: make([]js.Arg, len(a.List))}
	for i, arg := range a.List {
		v, err := m.expr(arg.Value)
		if err != nil {
			return a, err
		}
		out.List[i] = js.Arg{Value: v, Rest: arg.Rest}
	}
	return out, nil
}

func (m mapper) bindings(list []js.BindingElement) ([]js.BindingElement, error) {
	out := make([]js.BindingElement, len(list))
	for i, el := range list {
		def, err := m.optExpr(el.Default)
		if err != nil {
			return nil, err
		}
		out[i] = js.BindingElement{Binding: el.Binding, Default: def}
	}
	return out, nil
}

func (m mapper) params(p js.Params) (js.Params, error) {
	list, err := m.bindings(p.List)
	if err != nil {
		return p, err
	}
	return js.Params{List: list, Rest: p.Rest}, nil
}

// children maps the direct children of n. Node kinds the rewriter has no
// use for (classes, modules) are returned as they are.
func (m mapper) children(n js.INode) (js.INode, error) {
	var err error
	switch n := n.(type) {
	case *js.BlockStmt:
		return m.blockPtr(n)

	case *js.ExprStmt:
		out := *n
		out.Value, err = m.expr(n.Value)
		return &out, err

	case *js.IfStmt:
		out := *n
		if out.Cond, err = m.expr(n.Cond); err != nil {
			return nil, err
		}
		if out.Body, err = m.stmt(n.Body); err != nil {
			return nil, err
		}
		out.Else, err = m.optStmt(n.Else)
		return &out, err

	case *js.DoWhileStmt:
		out := *n
		if out.Cond, err = m.expr(n.Cond); err != nil {
			return nil, err
		}
		out.Body, err = m.stmt(n.Body)
		return &out, err

	case *js.WhileStmt:
		out := *n
		if out.Cond, err = m.expr(n.Cond); err != nil {
			return nil, err
		}
		out.Body, err = m.stmt(n.Body)
		return &out, err

	case *js.ForStmt:
		out := *n
		if out.Init, err = m.optExpr(n.Init); err != nil {
			return nil, err
		}
		if out.Cond, err = m.optExpr(n.Cond); err != nil {
			return nil, err
		}
		if out.Post, err = m.optExpr(n.Post); err != nil {
			return nil, err
		}
		out.Body, err = m.blockPtr(n.Body)
		return &out, err

	case *js.ForInStmt:
		out := *n
		if out.Value, err = m.expr(n.Value); err != nil {
			return nil, err
		}
		out.Body, err = m.blockPtr(n.Body)
		return &out, err

	case *js.ForOfStmt:
		out := *n
		if out.Value, err = m.expr(n.Value); err != nil {
			return nil, err
		}
		out.Body, err = m.blockPtr(n.Body)
		return &out, err

	case *js.SwitchStmt:
		out := *n
		if out.Init, err = m.expr(n.Init); err != nil {
			return nil, err
		}
		out.List = make([]js.CaseClause, len(n.List))
		for i, clause := range n.List {
			c := clause
			if c.Cond, err = m.optExpr(clause.Cond); err != nil {
				return nil, err
			}
			if c.List, err = m.stmts(clause.List); err != nil {
				return nil, err
			}
			out.List[i] = c
		}
		return &out, nil

	case *js.ReturnStmt:
		out := *n
		out.Value, err = m.optExpr(n.Value)
		return &out, err

	case *js.ThrowStmt:
		out := *n
		out.Value, err = m.expr(n.Value)
		return &out, err

	case *js.TryStmt:
		out := *n
		if out.Body, err = m.blockPtr(n.Body); err != nil {
			return nil, err
		}
		if out.Catch, err = m.blockPtr(n.Catch); err != nil {
			return nil, err
		}
		out.Finally, err = m.blockPtr(n.Finally)
		return &out, err

	case *js.LabelledStmt:
		out := *n
		out.Value, err = m.stmt(n.Value)
		return &out, err

	case *js.VarDecl:
		out := *n
		out.List, err = m.bindings(n.List)
		return &out, err

	case *js.FuncDecl:
		out := *n
		if out.Params, err = m.params(n.Params); err != nil {
			return nil, err
		}
		out.Body, err = m.block(n.Body)
		return &out, err

	case *js.ArrowFunc:
		out := *n
		if out.Params, err = m.params(n.Params); err != nil {
			return nil, err
		}
		out.Body, err = m.block(n.Body)
		return &out, err

	case *js.DotExpr:
		out := *n
		if out.X, err = m.operand(n.X); err != nil {
			return nil, err
		}
		if m.prop != nil {
			out.Y, err = m.prop(n.Y)
		}
		return &out, err

	case *js.IndexExpr:
		out := *n
		if out.X, err = m.operand(n.X); err != nil {
			return nil, err
		}
		out.Y, err = m.expr(n.Y)
		return &out, err

	case *js.CallExpr:
		out := *n
		if out.X, err = m.operand(n.X); err != nil {
			return nil, err
		}
		out.Args, err = m.args(n.Args)
		return &out, err

	case *js.NewExpr:
		out := *n
		if out.X, err = m.operand(n.X); err != nil {
			return nil, err
		}
		if n.Args != nil {
			var args js.Args
			if args, err = m.args(*n.Args); err != nil {
				return nil, err
			}
			out.Args = &args
		}
		return &out, nil

	case *js.UnaryExpr:
		out := *n
		out.X, err = m.expr(n.X)
		return &out, err

	case *js.BinaryExpr:
		out := *n
		if out.X, err = m.expr(n.X); err != nil {
			return nil, err
		}
		out.Y, err = m.expr(n.Y)
		return &out, err

	case *js.CondExpr:
		out := *n
		if out.Cond, err = m.expr(n.Cond); err != nil {
			return nil, err
		}
		if out.X, err = m.expr(n.X); err != nil {
			return nil, err
		}
		out.Y, err = m.expr(n.Y)
		return &out, err

	case *js.GroupExpr:
		out := *n
		out.X, err = m.expr(n.X)
		return &out, err

	case *js.YieldExpr:
		out := *n
		out.X, err = m.optExpr(n.X)
		return &out, err

	case *js.CommaExpr:
		out := &js.CommaExpr{List: make([]js.IExpr, len(n.List))}
		for i, e := range n.List {
			if out.List[i], err = m.expr(e); err != nil {
				return nil, err
			}
		}
		return out, nil

	case *js.ArrayExpr:
		out := &js.ArrayExpr{List: make([]js.Element, len(n.List))}
		for i, el := range n.List {
			v, err := m.optExpr(el.Value)
			if err != nil {
				return nil, err
			}
			out.List[i] = js.Element{Value: v, Spread: el.Spread}
		}
		return out, nil

	case *js.ObjectExpr:
		out := &js.ObjectExpr{List: make([]js.Property, len(n.List))}
		for i, prop := range n.List {
			p := prop
			if p.Value, err = m.expr(prop.Value); err != nil {
				return nil, err
			}
			if p.Init, err = m.optExpr(prop.Init); err != nil {
				return nil, err
			}
			out.List[i] = p
		}
		return out, nil

	case *js.TemplateExpr:
		out := *n
		if out.Tag, err = m.optExpr(n.Tag); err != nil {
			return nil, err
		}
		out.List = make([]js.TemplatePart, len(n.List))
		for i, part := range n.List {
			v, err := m.expr(part.Expr)
			if err != nil {
				return nil, err
			}
			out.List[i] = js.TemplatePart{Value: part.Value, Expr: v}
		}
		return &out, nil
	}
	return n, nil
}

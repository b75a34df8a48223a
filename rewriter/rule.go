package rewriter

import (
	"fmt"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// Producer builds the replacement for a successful match.
type Producer func(Bindings) (js.INode, error)

// Rule is one pattern/template translation.
type Rule struct {
	Name    string
	Pattern *Pattern
	Produce Producer
	// Template is the plain template the producer instantiates, kept for
	// listing and progress checks.
	Template *Template
}

// Substitute instantiates t with the match bindings.
func Substitute(t *Template) Producer {
	return t.Instantiate
}

// WithAwait wraps the produced expression in an await statement.
func WithAwait(p Producer) Producer {
	return func(b Bindings) (js.INode, error) {
		n, err := p(b)
		if err != nil {
			return nil, err
		}
		expr, ok := syntax.AsExpr(n)
		if !ok {
			return nil, fmt.Errorf("cannot await %q", syntax.Source(n))
		}
		return syntax.Stmt(syntax.Await(expr)), nil
	}
}

// WithAsync marks the function literal bound to param as async before
// handing the bindings to p. A capture that is not a function literal is
// passed through untouched.
func WithAsync(param string, p Producer) Producer {
	return func(b Bindings) (js.INode, error) {
		bound, ok := b[param]
		if !ok {
			return p(b)
		}
		marked := make(Bindings, len(b))
		for k, v := range b {
			marked[k] = v
		}
		marked[param] = markAsync(bound)
		return p(marked)
	}
}

func markAsync(n js.INode) js.INode {
	switch fn := syntax.Unwrap(n).(type) {
	case *js.ArrowFunc:
		out := *fn
		out.Async = true
		return &out
	case *js.FuncDecl:
		out := *fn
		out.Async = true
		return &out
	}
	return n
}

// NewRule compiles a plain substitution rule.
func NewRule(name, pattern, template string) (Rule, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return Rule{}, err
	}
	t, err := CompileTemplate(template)
	if err != nil {
		return Rule{}, err
	}
	if name == "" {
		name = pattern
	}
	return Rule{Name: name, Pattern: p, Template: t, Produce: Substitute(t)}, nil
}

// Apply returns the rule's replacement for n, or false when n does not
// match.
func (r Rule) Apply(n js.INode) (js.INode, bool, error) {
	b, ok := r.Pattern.Match(n)
	if !ok {
		return nil, false, nil
	}
	out, err := r.Produce(b)
	if err != nil {
		return nil, false, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return out, true, nil
}

// Package rewriter translates script syntax trees by structural pattern
// rules: an ordered table of pattern/template pairs applied top-down.
package rewriter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// Bindings maps placeholder names to the nodes they captured.
type Bindings map[string]js.INode

// merge adds other into b. A placeholder bound twice must capture the same
// source text, otherwise the merge fails.
func (b Bindings) merge(other Bindings) bool {
	for name, node := range other {
		if prev, ok := b[name]; ok && syntax.Source(prev) != syntax.Source(node) {
			return false
		}
		b[name] = node
	}
	return true
}

// IsPlaceholder reports whether an identifier name acts as a capture
// placeholder: it has at least one letter and no lower-case ones.
func IsPlaceholder(name string) bool {
	if name == "" || strings.ToUpper(name) != name {
		return false
	}
	return strings.IndexFunc(name, unicode.IsLetter) >= 0
}

func placeholderName(n js.INode) (string, bool) {
	name, ok := syntax.IdentName(n)
	if !ok || !IsPlaceholder(name) {
		return "", false
	}
	return name, true
}

// Pattern is a parsed pattern source.
type Pattern struct {
	src  string
	root js.INode
}

// CompilePattern parses a single statement or expression pattern.
func CompilePattern(src string) (*Pattern, error) {
	root, err := syntax.ParseNode(src)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", src, err)
	}
	return &Pattern{src: src, root: root}, nil
}

func (p *Pattern) String() string { return p.src }

// Match matches the pattern against candidate.
func (p *Pattern) Match(candidate js.INode) (Bindings, bool) {
	return Match(p.root, candidate)
}

// Match structurally matches pattern against candidate. Placeholders match
// anything; identifiers match by name; member accesses and calls match
// part by part, calls only with the same number of arguments. Every other
// combination fails.
func Match(pattern, candidate js.INode) (Bindings, bool) {
	if pattern == nil || candidate == nil {
		return nil, false
	}

	if name, ok := placeholderName(pattern); ok {
		return Bindings{name: candidate}, true
	}

	pname, pok := syntax.IdentName(pattern)
	cname, cok := syntax.IdentName(candidate)
	if pok && cok {
		if pname != cname {
			return nil, false
		}
		return Bindings{}, true
	}

	if stmt, ok := pattern.(*js.ExprStmt); ok {
		return Match(stmt.Value, candidate)
	}
	if stmt, ok := candidate.(*js.ExprStmt); ok {
		return Match(pattern, stmt.Value)
	}

	switch p := pattern.(type) {
	case *js.DotExpr:
		c, ok := candidate.(*js.DotExpr)
		if !ok || p.Optional != c.Optional {
			return nil, false
		}
		return matchAll([]js.INode{p.X, p.Y}, []js.INode{c.X, c.Y})

	case *js.CallExpr:
		c, ok := candidate.(*js.CallExpr)
		if !ok || p.Optional != c.Optional {
			return nil, false
		}
		bindings, ok := Match(p.X, c.X)
		if !ok {
			return nil, false
		}
		if len(p.Args.List) != len(c.Args.List) {
			return nil, false
		}
		for i, parg := range p.Args.List {
			carg := c.Args.List[i]
			if parg.Rest != carg.Rest {
				return nil, false
			}
			argBindings, ok := Match(parg.Value, carg.Value)
			if !ok || !bindings.merge(argBindings) {
				return nil, false
			}
		}
		return bindings, true
	}

	return nil, false
}

func matchAll(patterns, candidates []js.INode) (Bindings, bool) {
	bindings := Bindings{}
	for i := range patterns {
		b, ok := Match(patterns[i], candidates[i])
		if !ok || !bindings.merge(b) {
			return nil, false
		}
	}
	return bindings, true
}

// Package syntax wraps the tdewolff JavaScript parser with the small set of
// helpers the rewriter and suite generator need.
package syntax

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"
)

var ErrNotExpression = errors.New("source is not a single expression")

// ParseScript parses a script body. Top-level await is accepted.
func ParseScript(src string) (*js.AST, error) {
	ast, err := js.Parse(parse.NewInputString(src), js.Options{})
	if err != nil {
		return nil, err
	}
	return ast, nil
}

// ParseNode parses a single statement and returns it. Expression statements
// are kept wrapped; the matcher and template code unwrap them where needed.
func ParseNode(src string) (js.INode, error) {
	ast, err := ParseScript(src)
	if err != nil {
		return nil, err
	}
	if len(ast.List) != 1 {
		return nil, fmt.Errorf("%q: expected one statement, got %d", src, len(ast.List))
	}
	return ast.List[0], nil
}

// ParseExpr parses src as a single expression.
func ParseExpr(src string) (js.IExpr, error) {
	node, err := ParseNode(src)
	if err != nil {
		return nil, err
	}
	stmt, ok := node.(*js.ExprStmt)
	if !ok {
		return nil, fmt.Errorf("%q: %w", src, ErrNotExpression)
	}
	return stmt.Value, nil
}

// MustParseExpr is like ParseExpr but panics on error. It is meant for
// sources fixed at compile time.
func MustParseExpr(src string) js.IExpr {
	expr, err := ParseExpr(src)
	if err != nil {
		panic(err)
	}
	return expr
}

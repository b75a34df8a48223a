package syntax

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/tdewolff/parse/v2/js"
)

// Ident returns an identifier reference.
func Ident(name string) *js.Var {
	return &js.Var{Data: []byte(name)}
}

// PropName returns the identifier used on the right side of a member access.
func PropName(name string) js.LiteralExpr {
	return js.LiteralExpr{TokenType: js.IdentifierToken, Data: []byte(name)}
}

// Str returns a double quoted string literal.
func Str(s string) *js.LiteralExpr {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return &js.LiteralExpr{TokenType: js.StringToken, Data: bytes.TrimSuffix(buf.Bytes(), []byte("\n"))}
}

// Member builds x.a.b... for the given property names.
func Member(x js.IExpr, names ...string) js.IExpr {
	for _, name := range names {
		x = &js.DotExpr{X: Operand(x), Y: PropName(name), Prec: js.OpMember}
	}
	return x
}

// Call builds callee(args...).
func Call(callee js.IExpr, args ...js.IExpr) *js.CallExpr {
	list := make([]js.Arg, 0, len(args))
	for _, arg := range args {
		list = append(list, js.Arg{Value: arg})
	}
	return &js.CallExpr{X: Operand(callee), Args: js.Args{List: list}}
}

// New builds new callee(args...).
func New(callee js.IExpr, args ...js.IExpr) *js.NewExpr {
	list := make([]js.Arg, 0, len(args))
	for _, arg := range args {
		list = append(list, js.Arg{Value: arg})
	}
	return &js.NewExpr{X: Operand(callee), Args: &js.Args{List: list}}
}

func Await(x js.IExpr) *js.UnaryExpr {
	return &js.UnaryExpr{Op: js.AwaitToken, X: x}
}

func Stmt(x js.IExpr) *js.ExprStmt {
	return &js.ExprStmt{Value: x}
}

// Assign builds the statement `name = value;`.
func Assign(name string, value js.IExpr) *js.ExprStmt {
	return Stmt(&js.BinaryExpr{Op: js.EqToken, X: Ident(name), Y: value})
}

// Let declares a single uninitialised binding.
func Let(name string) *js.VarDecl {
	return &js.VarDecl{
		TokenType: js.LetToken,
		List:      []js.BindingElement{{Binding: Ident(name)}},
	}
}

// Const declares binding = value.
func Const(binding js.IBinding, value js.IExpr) *js.VarDecl {
	return &js.VarDecl{
		TokenType: js.ConstToken,
		List:      []js.BindingElement{{Binding: binding, Default: value}},
	}
}

// Arrow builds a parameterless arrow function with the given body.
func Arrow(async bool, body ...js.IStmt) *js.ArrowFunc {
	return &js.ArrowFunc{Async: async, Body: js.BlockStmt{List: body}}
}

// Field is a key/value pair of an object literal.
type Field struct {
	Key   string
	Value js.IExpr
	// Quoted forces the key to be emitted as a string literal.
	Quoted bool
}

// Object builds an object literal from fields, in order.
func Object(fields ...Field) *js.ObjectExpr {
	obj := &js.ObjectExpr{}
	for _, f := range fields {
		var key js.LiteralExpr
		if !f.Quoted && js.AsIdentifierName([]byte(f.Key)) {
			key = PropName(f.Key)
		} else {
			key = *Str(f.Key)
		}
		obj.List = append(obj.List, js.Property{
			Name:  &js.PropertyName{Literal: key},
			Value: f.Value,
		})
	}
	return obj
}

// Spread returns the `...x` element of an object literal.
func Spread(x js.IExpr) js.Property {
	return js.Property{Spread: true, Value: x}
}

// DocComment renders text as a leading block comment statement.
func DocComment(text string) *js.Comment {
	text = strings.ReplaceAll(strings.TrimSpace(text), "*/", "*\\/")
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		return &js.Comment{Value: []byte("/** " + lines[0] + " */")}
	}

	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, line := range lines {
		sb.WriteString(strings.TrimRight(" * "+strings.TrimSpace(line), " "))
		sb.WriteString("\n")
	}
	sb.WriteString(" */")
	return &js.Comment{Value: []byte(sb.String())}
}

// Operand parenthesises expressions that would otherwise bind wrongly when
// used as the object of a member access or as a callee.
func Operand(x js.IExpr) js.IExpr {
	switch x.(type) {
	case *js.UnaryExpr, *js.BinaryExpr, *js.CondExpr, *js.ArrowFunc,
		*js.CommaExpr, *js.YieldExpr, *js.FuncDecl:
		return &js.GroupExpr{X: x}
	}
	return x
}

// IdentName reports the name of a plain identifier: either a variable
// reference or the property name of a member access.
func IdentName(n js.INode) (string, bool) {
	switch n := n.(type) {
	case *js.Var:
		return string(n.Name()), true
	case js.LiteralExpr:
		if n.TokenType == js.IdentifierToken {
			return string(n.Data), true
		}
	case *js.LiteralExpr:
		if n.TokenType == js.IdentifierToken {
			return string(n.Data), true
		}
	}
	return "", false
}

// Unwrap strips an expression statement down to its expression.
func Unwrap(n js.INode) js.INode {
	if stmt, ok := n.(*js.ExprStmt); ok {
		return stmt.Value
	}
	return n
}

// AsExpr fits n into an expression slot.
func AsExpr(n js.INode) (js.IExpr, bool) {
	expr, ok := Unwrap(n).(js.IExpr)
	return expr, ok
}

// AsStmt fits n into a statement slot.
func AsStmt(n js.INode) (js.IStmt, bool) {
	switch n := n.(type) {
	case js.IStmt:
		return n, true
	case js.IExpr:
		return Stmt(n), true
	}
	return nil, false
}

// Source prints a node as JavaScript.
func Source(n js.INode) string {
	var sb strings.Builder
	n.JS(&sb)
	return sb.String()
}

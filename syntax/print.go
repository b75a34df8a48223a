package syntax

import (
	"bytes"
	"io"

	"github.com/tdewolff/parse/v2/js"
)

// errWriter keeps the first write error; the js printers discard them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return len(p), nil
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, nil
}

// Fprint writes the program with a blank line between top-level statements.
// A comment stays attached to the statement following it.
func Fprint(w io.Writer, ast *js.AST) error {
	ew := &errWriter{w: w}
	for i, item := range ast.List {
		if i > 0 {
			if _, ok := ast.List[i-1].(*js.Comment); ok {
				ew.Write([]byte("\n"))
			} else {
				ew.Write([]byte("\n\n"))
			}
		}
		item.JS(ew)
		if _, ok := item.(*js.VarDecl); ok {
			ew.Write([]byte(";"))
		}
	}
	if len(ast.List) > 0 {
		ew.Write([]byte("\n"))
	}
	return ew.err
}

// Print renders the program to a byte slice.
func Print(ast *js.AST) []byte {
	var buf bytes.Buffer
	_ = Fprint(&buf, ast) // bytes.Buffer does not fail
	return buf.Bytes()
}

// Program wraps statements in an AST.
func Program(stmts ...js.IStmt) *js.AST {
	return &js.AST{BlockStmt: js.BlockStmt{List: stmts}}
}

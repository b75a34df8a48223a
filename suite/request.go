package suite

import (
	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// URLExpr builds the template literal for a request URL.
func URLExpr(u collection.URL) *js.TemplateExpr {
	return CompileTemplate(u.Template()).Expr()
}

// RequestOptions builds the fetch options object: method, headers and a
// raw body, each only when present. Header values are plain strings; only
// the body goes through the environment template.
func RequestOptions(r *collection.Request) *js.ObjectExpr {
	var fields []syntax.Field
	if r.Method != "" {
		fields = append(fields, syntax.Field{Key: "method", Value: syntax.Str(r.Method)})
	}
	if headers := r.EnabledHeaders(); len(headers) > 0 {
		hf := make([]syntax.Field, 0, len(headers))
		for _, h := range headers {
			hf = append(hf, syntax.Field{Key: h.Key, Value: syntax.Str(h.Value), Quoted: true})
		}
		fields = append(fields, syntax.Field{Key: "headers", Value: syntax.Object(hf...)})
	}
	if raw, ok := r.Body.RawText(); ok {
		fields = append(fields, syntax.Field{Key: "body", Value: CompileTemplate(raw).Expr()})
	}
	return syntax.Object(fields...)
}

// setupBlock is the before hook that performs the request. Prerequest
// statements run after the response has been read.
func setupBlock(r *collection.Request, prerequest []js.IStmt) js.IStmt {
	body := []js.IStmt{
		syntax.Assign("url", URLExpr(r.URL)),
		syntax.Assign("request", RequestOptions(r)),
		syntax.Assign("response", syntax.Await(syntax.Call(syntax.Ident("fetch"), syntax.Ident("url"), syntax.Ident("request")))),
		syntax.Assign("json", syntax.Await(syntax.Call(syntax.Member(syntax.Ident("response"), "json")))),
	}
	body = append(body, prerequest...)
	return syntax.Stmt(syntax.Call(syntax.Ident("before"), syntax.Arrow(true, body...)))
}

func declarations() []js.IStmt {
	return []js.IStmt{
		syntax.Let("request"),
		syntax.Let("url"),
		syntax.Let("response"),
		syntax.Let("json"),
	}
}

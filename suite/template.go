package suite

import (
	"regexp"
	"strings"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

// EnvironmentVar is the name of the map the generated suite reads
// variables from.
const EnvironmentVar = "environment"

var placeholderRe = regexp.MustCompile(`\{\{(.*?)\}\}`)

// Interpolation is a string split around its {{name}} placeholders.
// Quasis always has one more element than Names.
type Interpolation struct {
	Quasis []string
	Names  []string
}

// CompileTemplate splits src into literal segments and variable names.
// There is a single level of placeholders and no escaping; an unterminated
// "{{" is kept as literal text.
func CompileTemplate(src string) Interpolation {
	var in Interpolation
	last := 0
	for _, m := range placeholderRe.FindAllStringSubmatchIndex(src, -1) {
		in.Quasis = append(in.Quasis, src[last:m[0]])
		in.Names = append(in.Names, src[m[2]:m[3]])
		last = m[1]
	}
	// the trailing segment may be empty
	in.Quasis = append(in.Quasis, src[last:])
	return in
}

// Source puts the placeholders back, reproducing the compiled string.
func (in Interpolation) Source() string {
	var sb strings.Builder
	for i, q := range in.Quasis {
		sb.WriteString(q)
		if i < len(in.Names) {
			sb.WriteString("{{" + in.Names[i] + "}}")
		}
	}
	return sb.String()
}

// Static reports whether the string has no placeholders.
func (in Interpolation) Static() bool { return len(in.Names) == 0 }

// Exprs returns one environment lookup per placeholder, in order.
func (in Interpolation) Exprs() []js.IExpr {
	exprs := make([]js.IExpr, 0, len(in.Names))
	for _, name := range in.Names {
		exprs = append(exprs, Lookup(name))
	}
	return exprs
}

// Expr builds the template literal reading every placeholder from the
// environment.
func (in Interpolation) Expr() *js.TemplateExpr {
	if in.Static() {
		return &js.TemplateExpr{Tail: []byte("`" + escapeQuasi(in.Quasis[0]) + "`"), Prec: js.OpPrimary}
	}
	tmpl := &js.TemplateExpr{Prec: js.OpPrimary}
	for i, expr := range in.Exprs() {
		open := "}"
		if i == 0 {
			open = "`"
		}
		tmpl.List = append(tmpl.List, js.TemplatePart{
			Value: []byte(open + escapeQuasi(in.Quasis[i]) + "${"),
			Expr:  expr,
		})
	}
	tmpl.Tail = []byte("}" + escapeQuasi(in.Quasis[len(in.Quasis)-1]) + "`")
	return tmpl
}

// Lookup builds environment.get("name").
func Lookup(name string) *js.CallExpr {
	return syntax.Call(syntax.Member(syntax.Ident(EnvironmentVar), "get"), syntax.Str(name))
}

var quasiEscaper = strings.NewReplacer(`\`, `\\`, "`", "\\`", "${", `\${`)

func escapeQuasi(s string) string {
	return quasiEscaper.Replace(s)
}

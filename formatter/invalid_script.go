package formatter

// InvalidScriptFormatter shows the line the parser stopped on with a caret
// under the offending column.
type InvalidScriptFormatter struct{}

func (f *InvalidScriptFormatter) IssueTemplate() string {
	return `{{.Header}}
{{- .Snippet .StartLine .StartLine}}
{{- .Caret}}
{{- .NoteLine "generated suites must parse as JavaScript; convert the collection again"}}
`
}

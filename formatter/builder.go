// Package formatter renders check issues for the terminal.
package formatter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"
	"github.com/gnolang/pmconv/internal"
	tt "github.com/gnolang/pmconv/internal/types"
)

const tabWidth = 8

var (
	severityStyles = map[tt.Severity]*color.Color{
		tt.SeverityError:   color.New(color.FgRed, color.Bold),
		tt.SeverityWarning: color.New(color.FgHiYellow, color.Bold),
		tt.SeverityInfo:    color.New(color.FgHiCyan, color.Bold),
	}
	ruleStyle   = color.New(color.FgYellow, color.Bold)
	fileStyle   = color.New(color.FgCyan, color.Bold)
	gutterStyle = color.New(color.FgHiBlue, color.Bold)
	markStyle   = color.New(color.FgRed, color.Bold)
	hintStyle   = color.New(color.FgGreen, color.Bold)
)

// issueFormatter supplies the text template used for one kind of issue.
// Templates are executed against an *issueView.
type issueFormatter interface {
	IssueTemplate() string
}

var templates = map[string]*template.Template{
	internal.InvalidScript: mustParse(internal.InvalidScript, &InvalidScriptFormatter{}),
	"":                     mustParse("general", &GeneralIssueFormatter{}),
}

func mustParse(name string, f issueFormatter) *template.Template {
	return template.Must(template.New(name).Parse(f.IssueTemplate()))
}

func templateFor(rule string) *template.Template {
	if t, ok := templates[rule]; ok {
		return t
	}
	return templates[""]
}

// GenerateFormattedIssue formats issues found in one file. Each issue is
// followed by a blank line.
func GenerateFormattedIssue(issues []tt.Issue, source *internal.SourceCode) string {
	var sb strings.Builder
	for _, issue := range issues {
		if err := templateFor(issue.Rule).Execute(&sb, newIssueView(issue, source)); err != nil {
			fmt.Fprintf(&sb, "Error formatting issue: %v\n", err)
		}
	}
	return sb.String()
}

// issueView is an issue positioned against the source it was found in.
type issueView struct {
	tt.Issue
	lines     []string
	startLine int
	endLine   int
	width     int // of the widest line number
	indent    string
}

func newIssueView(issue tt.Issue, source *internal.SourceCode) *issueView {
	v := &issueView{Issue: issue, startLine: issue.Start.Line, endLine: issue.End.Line}
	if source != nil {
		v.lines = source.Lines
	}
	if v.endLine < v.startLine {
		v.endLine = v.startLine
	}
	v.width = len(fmt.Sprint(v.endLine))
	if v.inRange(v.startLine, v.endLine) {
		v.indent = commonIndent(v.lines[v.startLine-1 : v.endLine])
	}
	if v.Filename == "" {
		v.Filename = "<stdin>"
	}
	return v
}

func (v *issueView) inRange(start, end int) bool {
	return start > 0 && start <= end && end <= len(v.lines)
}

func (v *issueView) gutter(mark string) string {
	return gutterStyle.Sprintf("%s%s ", strings.Repeat(" ", v.width+1), mark)
}

// Header is the severity and rule line followed by the location.
func (v *issueView) Header() string {
	var sb strings.Builder
	if style, ok := severityStyles[v.Severity]; ok {
		sb.WriteString(style.Sprintf("%s: ", strings.ToLower(v.Severity.String())))
	}
	sb.WriteString(ruleStyle.Sprintf("%s\n", v.Rule))
	sb.WriteString(gutterStyle.Sprintf("%s--> ", strings.Repeat(" ", v.width)))
	sb.WriteString(fileStyle.Sprintf("%s:%d:%d", v.Filename, v.Start.Line, v.Start.Column))
	sb.WriteString("\n")
	return sb.String()
}

// Snippet prints source lines from through to with their numbers, less
// the indentation they share.
func (v *issueView) Snippet(from, to int) string {
	var sb strings.Builder
	sb.WriteString(gutterStyle.Sprintf("%s|\n", strings.Repeat(" ", v.width+1)))
	for n := from; n <= to; n++ {
		if n < 1 || n > len(v.lines) {
			continue
		}
		sb.WriteString(gutterStyle.Sprintf("%*d | ", v.width, n))
		sb.WriteString(strings.TrimPrefix(v.lines[n-1], v.indent))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (v *issueView) StartLine() int { return v.startLine }
func (v *issueView) EndLine() int   { return v.endLine }

// column is the display offset of a 1-based column of line n once the
// shared indentation is removed.
func (v *issueView) column(n, col int) int {
	return max(visualWidth(v.lines[n-1], col)-visualWidth(v.indent, len(v.indent)+1), 0)
}

// Underline marks the issue's range with tildes and prints the message
// below it. A range over several lines is underlined on its first line
// only.
func (v *issueView) Underline() string {
	if !v.inRange(v.startLine, v.endLine) {
		return v.gutter("|") + markStyle.Sprintf("%s\n", v.Message)
	}
	endCol := v.End.Column
	if v.endLine != v.startLine {
		endCol = len(v.lines[v.startLine-1])
	}
	start := v.column(v.startLine, v.Start.Column)
	length := max(v.column(v.startLine, endCol)-start+1, 1)

	return v.gutter("|") + strings.Repeat(" ", start) + markStyle.Sprintf("%s\n", strings.Repeat("~", length)) +
		v.gutter("=") + markStyle.Sprintf("%s\n", v.Message)
}

// Caret points at the start column and prints the message below it.
func (v *issueView) Caret() string {
	if !v.inRange(v.startLine, v.startLine) {
		return v.gutter("|") + markStyle.Sprintf("%s\n", v.Message)
	}
	return v.gutter("|") + strings.Repeat(" ", v.column(v.startLine, v.Start.Column)) + markStyle.Sprint("^") + "\n" +
		v.gutter("=") + markStyle.Sprintf("%s\n", v.Message)
}

// Help renders the suggestion, if any.
func (v *issueView) Help() string { return v.hint("help", v.Suggestion) }

// NoteLine renders text, or the issue's own note when text is empty.
func (v *issueView) NoteLine(text string) string {
	if text == "" {
		text = v.Note
	}
	return v.hint("note", text)
}

func (v *issueView) hint(label, text string) string {
	if text == "" {
		return ""
	}
	return v.gutter("=") + hintStyle.Sprintf("%s: ", label) + text + "\n"
}

// visualWidth is the display width of line before the 1-based column col,
// with tabs expanded.
func visualWidth(line string, col int) int {
	width := 0
	for i, r := range line {
		if i+1 >= col {
			break
		}
		if r == '\t' {
			width += tabWidth - width%tabWidth
		} else {
			width++
		}
	}
	return width
}

// commonIndent is the leading whitespace every non-blank line starts with.
func commonIndent(lines []string) string {
	indent, found := "", false
	for _, line := range lines {
		body := strings.TrimLeft(line, " \t")
		if body == "" {
			continue
		}
		lead := line[:len(line)-len(body)]
		if !found {
			indent, found = lead, true
			continue
		}
		n := 0
		for n < len(indent) && n < len(lead) && indent[n] == lead[n] {
			n++
		}
		indent = indent[:n]
	}
	return indent
}

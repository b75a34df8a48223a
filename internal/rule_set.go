package internal

import (
	"fmt"

	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/tdewolff/parse/v2/js"
)

// CheckRule inspects a generated file for constructs the translation left
// behind.
type CheckRule interface {
	// Check runs the rule on the tokens of a parsed file.
	Check(filename string, tokens []token) []tt.Issue

	// Name returns the name of the rule.
	Name() string

	Severity() tt.Severity
	SetSeverity(tt.Severity)
}

const (
	UntranslatedReference = "untranslated-reference"
	LegacyGlobal          = "legacy-global"
	InvalidScript         = "invalid-script"
)

// hostObjects are the scripting objects that only exist inside the
// collection runner.
var hostObjects = map[string]bool{
	"pm":      true,
	"postman": true,
}

// legacyGlobals are the pre-pm sandbox globals.
var legacyGlobals = map[string]string{
	"tests":           "record the assertion with it() and expect()",
	"responseBody":    "use json or await response.text()",
	"responseCode":    "use response.status",
	"responseHeaders": "use response.headers.get(name)",
	"responseTime":    "measure the request in the before hook",
	"globals":         "use environment.get(name)",
	"environment":     "",
}

type untranslatedReferenceRule struct {
	severity tt.Severity
}

func NewUntranslatedReferenceRule() CheckRule {
	return &untranslatedReferenceRule{severity: tt.SeverityWarning}
}

func (r *untranslatedReferenceRule) Name() string              { return UntranslatedReference }
func (r *untranslatedReferenceRule) Severity() tt.Severity     { return r.severity }
func (r *untranslatedReferenceRule) SetSeverity(s tt.Severity) { r.severity = s }

// Check reports every `pm.x` and `postman.x` member access. Only the first
// property is reported, so pm.response.headers yields pm.response.
func (r *untranslatedReferenceRule) Check(filename string, tokens []token) []tt.Issue {
	var issues []tt.Issue
	code := significant(tokens)
	for i := 0; i+2 < len(code); i++ {
		obj, dot, prop := code[i], code[i+1], code[i+2]
		if !isName(obj) || !hostObjects[obj.Text] {
			continue
		}
		if dot.Type != js.DotToken && dot.Type != js.OptChainToken {
			continue
		}
		if !js.IsIdentifierName(prop.Type) {
			continue
		}
		if i > 0 && (code[i-1].Type == js.DotToken || code[i-1].Type == js.OptChainToken) {
			continue
		}
		ref := obj.Text + "." + prop.Text
		issues = append(issues, tt.Issue{
			Rule:     r.Name(),
			Category: "translation",
			Filename: filename,
			Message:  fmt.Sprintf("%s has no translation and will fail at run time", ref),
			Note:     "add a rule for it to the rules file named in .pmconv.yaml",
			Severity: r.severity,
			Start:    obj.Pos,
			End:      prop.End(),
		})
	}
	return issues
}

type legacyGlobalRule struct {
	severity tt.Severity
}

func NewLegacyGlobalRule() CheckRule {
	return &legacyGlobalRule{severity: tt.SeverityWarning}
}

func (r *legacyGlobalRule) Name() string              { return LegacyGlobal }
func (r *legacyGlobalRule) Severity() tt.Severity     { return r.severity }
func (r *legacyGlobalRule) SetSeverity(s tt.Severity) { r.severity = s }

// Check reports free uses of the legacy sandbox globals. The environment
// map is declared by every generated file, so only assignments to it
// through an index count.
func (r *legacyGlobalRule) Check(filename string, tokens []token) []tt.Issue {
	var issues []tt.Issue
	code := significant(tokens)
	for i, tok := range code {
		suggestion, ok := legacyGlobals[tok.Text]
		if !ok || !isName(tok) {
			continue
		}
		if i > 0 && (code[i-1].Type == js.DotToken || code[i-1].Type == js.OptChainToken) {
			continue
		}
		if i+1 < len(code) && code[i+1].Type == js.ColonToken {
			// object key
			continue
		}
		if tok.Text == "environment" || tok.Text == "tests" {
			if i+1 >= len(code) || code[i+1].Type != js.OpenBracketToken {
				continue
			}
		}
		if suggestion == "" {
			suggestion = "use environment.set(name, value)"
		}
		issues = append(issues, tt.Issue{
			Rule:       r.Name(),
			Category:   "translation",
			Filename:   filename,
			Message:    fmt.Sprintf("legacy sandbox global %s is not defined in the generated suite", tok.Text),
			Suggestion: suggestion,
			Severity:   r.severity,
			Start:      tok.Pos,
			End:        tok.End(),
		})
	}
	return issues
}

func significant(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for _, t := range tokens {
		if !t.isComment() {
			out = append(out, t)
		}
	}
	return out
}

func isName(t token) bool {
	return t.Type == js.IdentifierToken || js.IsIdentifier(t.Type)
}

type ruleConstructor func() CheckRule

var allRuleConstructors = map[string]ruleConstructor{
	UntranslatedReference: NewUntranslatedReferenceRule,
	LegacyGlobal:          NewLegacyGlobalRule,
}

package formatter

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/gnolang/pmconv/internal"
	tt "github.com/gnolang/pmconv/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestGenerateFormattedIssue(t *testing.T) {
	t.Parallel()
	code := internal.NewSourceCode([]byte(`describe("Users", () => {
    it("ok", async function() {
        pm.sendRequest(url);
        tests["ok"] = true;
    });
});
`))

	issues := []tt.Issue{
		{
			Rule:     internal.UntranslatedReference,
			Filename: "test/users.spec.js",
			Start:    tt.Position{Line: 3, Column: 9},
			End:      tt.Position{Line: 3, Column: 22},
			Message:  "pm.sendRequest has no translation and will fail at run time",
			Note:     "add a rule for it to the rules file named in .pmconv.yaml",
			Severity: tt.SeverityWarning,
		},
		{
			Rule:       internal.LegacyGlobal,
			Filename:   "test/users.spec.js",
			Start:      tt.Position{Line: 4, Column: 9},
			End:        tt.Position{Line: 4, Column: 13},
			Message:    "legacy sandbox global tests is not defined in the generated suite",
			Suggestion: "record the assertion with it() and expect()",
			Severity:   tt.SeverityError,
		},
	}

	expected := `warning: untranslated-reference
 --> test/users.spec.js:3:9
  |
3 | pm.sendRequest(url);
  | ~~~~~~~~~~~~~~
  = pm.sendRequest has no translation and will fail at run time
  = note: add a rule for it to the rules file named in .pmconv.yaml

error: legacy-global
 --> test/users.spec.js:4:9
  |
4 | tests["ok"] = true;
  | ~~~~~
  = legacy sandbox global tests is not defined in the generated suite
  = help: record the assertion with it() and expect()

`

	assert.Equal(t, expected, GenerateFormattedIssue(issues, code))
}

func TestFormatWideLineNumbers(t *testing.T) {
	t.Parallel()

	lines := make([]string, 12)
	lines[11] = "\tpm.info;"
	code := &internal.SourceCode{Lines: lines}

	issue := tt.Issue{
		Rule:     internal.UntranslatedReference,
		Filename: "a.js",
		Start:    tt.Position{Line: 12, Column: 2},
		End:      tt.Position{Line: 12, Column: 8},
		Message:  "pm.info has no translation",
		Severity: tt.SeverityInfo,
	}

	expected := `info: untranslated-reference
  --> a.js:12:2
   |
12 | pm.info;
   | ~~~~~~~
   = pm.info has no translation

`
	assert.Equal(t, expected, GenerateFormattedIssue([]tt.Issue{issue}, code))
}

func TestFormatMultiLineRange(t *testing.T) {
	t.Parallel()

	code := &internal.SourceCode{Lines: []string{"  pm.foo(", "    bar);"}}
	issue := tt.Issue{
		Rule:     internal.UntranslatedReference,
		Filename: "a.js",
		Start:    tt.Position{Line: 1, Column: 3},
		End:      tt.Position{Line: 2, Column: 9},
		Message:  "spans two lines",
		Severity: tt.SeverityWarning,
	}

	expected := `warning: untranslated-reference
 --> a.js:1:3
  |
1 | pm.foo(
2 |   bar);
  | ~~~~~~~
  = spans two lines

`
	assert.Equal(t, expected, GenerateFormattedIssue([]tt.Issue{issue}, code))
}

func TestFormatInvalidScript(t *testing.T) {
	t.Parallel()

	code := internal.NewSourceCode([]byte("const a = ;\n"))
	issue := tt.Issue{
		Rule:     internal.InvalidScript,
		Start:    tt.Position{Line: 1, Column: 11},
		End:      tt.Position{Line: 1, Column: 11},
		Message:  "unexpected ;",
		Severity: tt.SeverityError,
	}

	expected := `error: invalid-script
 --> <stdin>:1:11
  |
1 | const a = ;
  |           ^
  = unexpected ;
  = note: generated suites must parse as JavaScript; convert the collection again

`
	assert.Equal(t, expected, GenerateFormattedIssue([]tt.Issue{issue}, code))
}

func TestFormatOutOfRange(t *testing.T) {
	t.Parallel()

	code := &internal.SourceCode{Lines: []string{"one;"}}
	issue := tt.Issue{
		Rule:     internal.UntranslatedReference,
		Filename: "a.js",
		Start:    tt.Position{Line: 5, Column: 1},
		End:      tt.Position{Line: 5, Column: 3},
		Message:  "stale position",
		Severity: tt.SeverityWarning,
	}

	expected := `warning: untranslated-reference
 --> a.js:5:1
  |
  | stale position

`
	assert.Equal(t, expected, GenerateFormattedIssue([]tt.Issue{issue}, code))
}

func TestCommonIndent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"spaces", []string{"    a", "      b", "", "    c"}, "    "},
		{"tabs", []string{"\t\ta", "\tb"}, "\t"},
		{"none", []string{"a", "  b"}, ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, commonIndent(tt.lines))
		})
	}
}

func TestVisualWidth(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, visualWidth("abc", 1))
	assert.Equal(t, 2, visualWidth("abc", 3))
	assert.Equal(t, 8, visualWidth("\tabc", 2))
	assert.Equal(t, 0, visualWidth("abc", -1))
}

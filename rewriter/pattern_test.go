package rewriter

import (
	"testing"

	"github.com/gnolang/pmconv/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholder(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		want bool
	}{
		{"X", true},
		{"AB", true},
		{"X1", true},
		{"MY_VAR", true},
		{"x", false},
		{"Xy", false},
		{"_", false},
		{"$", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlaceholder(tt.name), tt.name)
	}
}

func TestMatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		pattern   string
		candidate string
		wantMatch bool
		want      map[string]string
	}{
		{
			name:      "placeholder binds anything",
			pattern:   "X",
			candidate: "a + b * c",
			wantMatch: true,
			want:      map[string]string{"X": "a + b * c"},
		},
		{
			name:      "equal identifiers",
			pattern:   "pm",
			candidate: "pm",
			wantMatch: true,
			want:      map[string]string{},
		},
		{
			name:      "identifier pattern against statement candidate",
			pattern:   "pm",
			candidate: "pm;",
			wantMatch: true,
			want:      map[string]string{},
		},
		{
			name:      "identifier pattern against member access",
			pattern:   "pm",
			candidate: "pm.info",
		},
		{
			name:      "different identifiers",
			pattern:   "pm",
			candidate: "postman",
		},
		{
			name:      "member access",
			pattern:   "pm.environment",
			candidate: "pm.environment",
			wantMatch: true,
			want:      map[string]string{},
		},
		{
			name:      "member access property mismatch",
			pattern:   "pm.environment",
			candidate: "pm.globals",
		},
		{
			name:      "member chain is not a prefix match",
			pattern:   "pm.environment",
			candidate: "pm.environment.unset",
		},
		{
			name:      "property placeholder",
			pattern:   "pm.response.to.X",
			candidate: "pm.response.to.ok",
			wantMatch: true,
			want:      map[string]string{"X": "ok"},
		},
		{
			name:      "call with arguments",
			pattern:   "pm.expect(X).A.B(Y)",
			candidate: "pm.expect(json.id).to.equal(1)",
			wantMatch: true,
			want:      map[string]string{"X": "json.id", "A": "to", "B": "equal", "Y": "1"},
		},
		{
			name:      "argument count must be equal",
			pattern:   "pm.test(X, Y)",
			candidate: `pm.test("name")`,
		},
		{
			name:      "extra argument",
			pattern:   "pm.expect(X)",
			candidate: "pm.expect(a, b)",
		},
		{
			name:      "callee mismatch",
			pattern:   "pm.test(X, Y)",
			candidate: "pm.it(a, b)",
		},
		{
			name:      "call against member",
			pattern:   "pm.response.json()",
			candidate: "pm.response.json",
		},
		{
			name:      "optional chain is a different shape",
			pattern:   "pm.environment",
			candidate: "pm?.environment",
		},
		{
			name:      "literals are not matched structurally",
			pattern:   "f(1)",
			candidate: "f(1)",
		},
		{
			name:      "consistent repeated placeholder",
			pattern:   "f(X, X)",
			candidate: "f(a.b, a.b)",
			wantMatch: true,
			want:      map[string]string{"X": "a.b"},
		},
		{
			name:      "conflicting repeated placeholder",
			pattern:   "f(X, X)",
			candidate: "f(a, b)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			c, err := syntax.ParseNode(tt.candidate)
			require.NoError(t, err)

			b, ok := p.Match(c)
			assert.Equal(t, tt.wantMatch, ok)
			if !tt.wantMatch {
				assert.Nil(t, b)
				return
			}
			got := make(map[string]string, len(b))
			for name, node := range b {
				got[name] = syntax.Source(syntax.Unwrap(node))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchUnwrapsStatements(t *testing.T) {
	t.Parallel()

	stmt, err := syntax.ParseNode("pm.response.to.be.ok;")
	require.NoError(t, err)
	expr, err := syntax.ParseExpr("pm.response.to.be.ok")
	require.NoError(t, err)

	// statement pattern against expression candidate
	p, err := CompilePattern("pm.response.to.X.Y;")
	require.NoError(t, err)
	_, ok := p.Match(expr)
	assert.True(t, ok)

	// expression pattern against statement candidate
	pexpr, err := syntax.ParseExpr("pm.response.to.X.Y")
	require.NoError(t, err)
	b, ok := Match(pexpr, stmt)
	require.True(t, ok)
	assert.Equal(t, "be", syntax.Source(b["X"]))
	assert.Equal(t, "ok", syntax.Source(b["Y"]))

	// bare identifier against its statement
	ident, err := syntax.ParseExpr("pm")
	require.NoError(t, err)
	identStmt, err := syntax.ParseNode("pm;")
	require.NoError(t, err)
	_, ok = Match(ident, identStmt)
	assert.True(t, ok)
	_, ok = Match(identStmt, ident)
	assert.True(t, ok)
}

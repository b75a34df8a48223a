package internal

import (
	"strings"
)

const nolintPrefix = "nolint"

// nolintScope represents a range of lines where nolint applies.
type nolintScope struct {
	start int
	end   int
	rules map[string]struct{} // empty => apply to all rules
}

// nolintManager checks whether a line is covered by a nolint comment.
type nolintManager struct {
	scopes []nolintScope
}

// parseNolintComments collects `// nolint` and `// nolint:rule1,rule2`
// comments from the lexed file. A comment placed before the first code
// token silences the whole file; any other comment covers its own line and
// the next one.
func parseNolintComments(tokens []token) *nolintManager {
	manager := &nolintManager{}

	firstCode := -1
	for _, t := range tokens {
		if !t.isComment() {
			firstCode = t.Pos.Line
			break
		}
	}

	for _, t := range tokens {
		if !t.isComment() {
			continue
		}
		text, ok := nolintText(t.Text)
		if !ok {
			continue
		}
		scope := nolintScope{rules: parseNolintRules(text)}
		if firstCode == -1 || t.Pos.Line < firstCode {
			scope.start, scope.end = 1, int(^uint(0)>>1)
		} else {
			scope.start, scope.end = t.Pos.Line, t.End().Line+1
		}
		manager.scopes = append(manager.scopes, scope)
	}
	return manager
}

// nolintText strips the comment markers and reports whether the comment is
// a nolint directive.
func nolintText(comment string) (string, bool) {
	switch {
	case strings.HasPrefix(comment, "//"):
		comment = comment[2:]
	case strings.HasPrefix(comment, "/*"):
		comment = strings.TrimSuffix(comment[2:], "*/")
	}
	comment = strings.TrimSpace(comment)
	if !strings.HasPrefix(comment, nolintPrefix) {
		return "", false
	}
	rest := comment[len(nolintPrefix):]
	if rest != "" && rest[0] != ':' && rest[0] != ' ' {
		return "", false
	}
	return rest, true
}

// parseNolintRules parses the rule list after the colon.
func parseNolintRules(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})

	colon := strings.IndexByte(text, ':')
	if colon == -1 || colon == len(text)-1 {
		return rulesMap
	}

	start := colon + 1
	n := len(text)
	for i := start; i <= n; i++ {
		if i == n || text[i] == ',' {
			end := i
			for start < end && text[start] == ' ' {
				start++
			}
			for end > start && text[end-1] == ' ' {
				end--
			}
			if start < end {
				rulesMap[text[start:end]] = struct{}{}
			}
			start = i + 1
		}
	}
	return rulesMap
}

// IsNolint reports whether rule is silenced on line.
func (m *nolintManager) IsNolint(line int, rule string) bool {
	for _, scope := range m.scopes {
		if line < scope.start || line > scope.end {
			continue
		}
		if len(scope.rules) == 0 {
			return true
		}
		if _, exists := scope.rules[rule]; exists {
			return true
		}
	}
	return false
}

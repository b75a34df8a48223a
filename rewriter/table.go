package rewriter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/pmconv/syntax"
	"github.com/tdewolff/parse/v2/js"
)

var ErrRuleCycle = errors.New("rule output is matched again by the same rule")

// Table is an ordered list of rules. The first matching rule wins.
type Table struct {
	rules []Rule
}

func NewTable(rules ...Rule) *Table {
	return &Table{rules: append([]Rule(nil), rules...)}
}

// Rules returns the rules in precedence order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

func (t *Table) Len() int { return len(t.rules) }

// Extend returns a new table with rules appended after the existing ones.
func (t *Table) Extend(rules ...Rule) *Table {
	return NewTable(append(t.Rules(), rules...)...)
}

// Apply tries the rules in order on n and returns the first replacement
// together with the name of the rule that produced it.
func (t *Table) Apply(n js.INode) (js.INode, string, bool, error) {
	for _, r := range t.rules {
		out, ok, err := r.Apply(n)
		if err != nil {
			return nil, r.Name, false, err
		}
		if ok {
			return out, r.Name, true, nil
		}
	}
	return nil, "", false, nil
}

// Validate checks that no rule can feed itself. Each rule's output, built
// with its placeholders left in place, is run through the table; a chain of
// replacements that comes back to a rule already seen is rejected.
func (t *Table) Validate() error {
	for _, r := range t.rules {
		out, err := r.Produce(Bindings{})
		if err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}

		if inner := findMatch(r.Pattern, out); inner != nil {
			return fmt.Errorf("%w: %s reappears inside %q", ErrRuleCycle, r.Name, syntax.Source(inner))
		}

		seen := map[string]bool{r.Name: true}
		chain := []string{r.Name}
		for range t.rules {
			next, name, ok, err := t.Apply(out)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			chain = append(chain, name)
			if seen[name] {
				return fmt.Errorf("%w: %s", ErrRuleCycle, strings.Join(chain, " -> "))
			}
			seen[name] = true
			out = next
		}
	}
	return nil
}

// findMatch returns the first node strictly below root that p matches.
func findMatch(p *Pattern, root js.INode) js.INode {
	v := &matchFinder{pattern: p, root: root, top: syntax.Unwrap(root)}
	js.Walk(v, root)
	return v.found
}

type matchFinder struct {
	pattern   *Pattern
	root, top js.INode
	found     js.INode
}

func (v *matchFinder) Enter(n js.INode) js.IVisitor {
	if v.found != nil {
		return nil
	}
	if _, ok := n.(js.LiteralExpr); !ok && (n == v.root || n == v.top) {
		return v
	}
	if _, ok := v.pattern.Match(n); ok {
		v.found = n
		return nil
	}
	return v
}

func (v *matchFinder) Exit(js.INode) {}

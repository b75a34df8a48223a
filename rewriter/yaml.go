package rewriter

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuleSpec is the declarative form of a rule.
type RuleSpec struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Template string `yaml:"template"`
	// Await wraps the instantiated template in an await statement.
	Await bool `yaml:"await,omitempty"`
	// Async names a placeholder whose function literal is marked async.
	Async string `yaml:"async,omitempty"`
}

type RulesConfig struct {
	Rules []RuleSpec `yaml:"rules"`
}

//go:embed rules.yaml
var defaultRules []byte

// Load reads rule specs from a YAML file.
func Load(path string) ([]RuleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes rule specs, keeping their declared order.
func Parse(data []byte) ([]RuleSpec, error) {
	var cfg RulesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return cfg.Rules, nil
}

// Compile turns a spec into a rule.
func (s RuleSpec) Compile() (Rule, error) {
	r, err := NewRule(s.Name, s.Pattern, s.Template)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", s.Name, err)
	}
	if s.Async != "" {
		if !IsPlaceholder(s.Async) {
			return Rule{}, fmt.Errorf("rule %q: async target %q is not a placeholder", r.Name, s.Async)
		}
		r.Produce = WithAsync(s.Async, r.Produce)
	}
	if s.Await {
		r.Produce = WithAwait(r.Produce)
	}
	return r, nil
}

// Build compiles specs into a validated table.
func Build(specs []RuleSpec) (*Table, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		r, err := s.Compile()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	table := NewTable(rules...)
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// DefaultSpecs returns the built-in translation rules.
func DefaultSpecs() []RuleSpec {
	specs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return specs
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
	defaultErr   error
)

// DefaultTable returns the built-in rule table. It is built once and shared;
// tables are never modified after construction.
func DefaultTable() (*Table, error) {
	defaultOnce.Do(func() {
		defaultTable, defaultErr = Build(DefaultSpecs())
	})
	return defaultTable, defaultErr
}

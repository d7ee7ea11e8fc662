// Package inject adds imports for configured globals that a module uses
// without declaring them.
package inject

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	// ErrConflictingSelectors rejects a rule with both a named and a namespace selector.
	ErrConflictingSelectors = errors.New("named and namespace selectors are mutually exclusive")
	// ErrInvalidRule covers every other malformed rule.
	ErrInvalidRule = errors.New("invalid inject rule")
)

// Config is the raw rule as written in the configuration file.
type Config struct {
	From          string `toml:"from" yaml:"from" json:"from"`
	Named         string `toml:"named" yaml:"named" json:"named,omitempty"`
	Namespace     bool   `toml:"namespace" yaml:"namespace" json:"namespace,omitempty"`
	Exclude       string `toml:"exclude" yaml:"exclude" json:"exclude,omitempty"`
	PreferRequire bool   `toml:"prefer_require" yaml:"prefer_require" json:"prefer_require,omitempty"`
}

// Spec is a compiled rule for one watched name.
type Spec struct {
	// Name is the local identifier that triggers the rule.
	Name string
	// From is the module the binding is imported from.
	From string
	// Named selects an export by name; empty means the default export
	// unless Namespace is set.
	Named     string
	Namespace bool
	// Exclude skips modules whose path matches.
	Exclude       *regexp.Regexp
	PreferRequire bool
}

// Excludes reports whether the rule is disabled for modulePath.
func (s *Spec) Excludes(modulePath string) bool {
	return s.Exclude != nil && s.Exclude.MatchString(modulePath)
}

// RuleError names the rule a configuration problem belongs to.
type RuleError struct {
	Name string
	Err  error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("inject %q: %v", e.Name, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

// Table is the compiled, read-only set of rules shared by all module tasks.
type Table struct {
	specs map[string]*Spec
	names []string
}

// Compile validates raw rules. It fails on the first bad rule in name order.
func Compile(rules map[string]Config) (*Table, error) {
	t := &Table{specs: make(map[string]*Spec, len(rules))}
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		cfg := rules[name]
		if cfg.Named != "" && cfg.Namespace {
			return nil, &RuleError{Name: name, Err: ErrConflictingSelectors}
		}
		if strings.TrimSpace(cfg.From) == "" {
			return nil, &RuleError{Name: name, Err: fmt.Errorf("%w: missing source module", ErrInvalidRule)}
		}
		spec := &Spec{
			Name:          name,
			From:          cfg.From,
			Named:         cfg.Named,
			Namespace:     cfg.Namespace,
			PreferRequire: cfg.PreferRequire,
		}
		if cfg.Exclude != "" {
			re, err := regexp.Compile(cfg.Exclude)
			if err != nil {
				return nil, &RuleError{Name: name, Err: fmt.Errorf("%w: exclude: %w", ErrInvalidRule, err)}
			}
			spec.Exclude = re
		}
		t.specs[name] = spec
	}
	t.names = names
	return t, nil
}

// Lookup returns the rule watching name.
func (t *Table) Lookup(name string) (*Spec, bool) {
	if t == nil {
		return nil, false
	}
	spec, ok := t.specs[name]
	return spec, ok
}

// Names returns the watched names in ascending order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.names)
}

// Len reports the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.specs)
}

// active returns the working copy of rules that apply to modulePath.
func (t *Table) active(modulePath string) map[string]*Spec {
	out := make(map[string]*Spec, t.Len())
	if t == nil {
		return out
	}
	for name, spec := range t.specs {
		if !spec.Excludes(modulePath) {
			out[name] = spec
		}
	}
	return out
}

// Fingerprint renders the rules deterministically for cache keys.
func (t *Table) Fingerprint() string {
	var sb strings.Builder
	for _, name := range t.Names() {
		spec := t.specs[name]
		exclude := ""
		if spec.Exclude != nil {
			exclude = spec.Exclude.String()
		}
		fmt.Fprintf(&sb, "%s=%s|%s|%t|%s|%t\n", name, spec.From, spec.Named, spec.Namespace, exclude, spec.PreferRequire)
	}
	return sb.String()
}

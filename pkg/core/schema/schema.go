// Package schema defines the fixed, versioned sets of features selected
// from the three statements and the ratios computed from them. Downstream
// consumers depend on these names verbatim.
package schema

import (
	"fmt"
	"sort"

	"statement_scraper/pkg/core/statement"
)

// Columns carried through from the income statement on every row.
const (
	FeatureTime    = "time"
	FeatureCompany = "company"
)

// Source locates a feature in one statement table.
type Source struct {
	Kind statement.Kind
	// Column is the line-item name to select.
	Column string
	// Position, when non-zero, selects Columns[Position] of the table
	// instead of a name. Position 2 is the first line item.
	Position int
}

// Positional reports whether the feature is selected by column position.
func (s Source) Positional() bool { return s.Position > 0 }

func (s Source) String() string {
	if s.Positional() {
		return fmt.Sprintf("%s[#%d]", s.Kind, s.Position)
	}
	return fmt.Sprintf("%s[%q]", s.Kind, s.Column)
}

// Feature is one canonical column of the features table.
type Feature struct {
	Name   string
	Source Source
	// Optional features may be absent without dropping the period.
	Optional bool
	// Fractional features keep their decimals; all others are truncated to
	// whole numbers.
	Fractional bool
}

// Term is a signed reference to a feature.
type Term struct {
	Feature string
	Sign    float64
}

// Expr is a sum of signed feature references.
type Expr []Term

// Ref is the expression consisting of one feature.
func Ref(feature string) Expr {
	return Expr{{Feature: feature, Sign: 1}}
}

// Minus is a - b.
func Minus(a, b string) Expr {
	return Expr{{Feature: a, Sign: 1}, {Feature: b, Sign: -1}}
}

// Metric is a named ratio between two feature expressions.
type Metric struct {
	Name        string
	Numerator   Expr
	Denominator Expr
}

// Schema is a complete feature/metric definition.
type Schema struct {
	Version  string
	Features []Feature
	Metrics  []Metric
}

// FeatureNames returns time, company and the feature names in order.
func (s *Schema) FeatureNames() []string {
	names := []string{FeatureTime, FeatureCompany}
	for _, f := range s.Features {
		names = append(names, f.Name)
	}
	return names
}

// MetricNames returns time, company and the metric names in order.
func (s *Schema) MetricNames() []string {
	names := []string{FeatureTime, FeatureCompany}
	for _, m := range s.Metrics {
		names = append(names, m.Name)
	}
	return names
}

// Feature looks up a feature definition by name.
func (s *Schema) Feature(name string) (Feature, bool) {
	for _, f := range s.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

// Validate checks that feature names are unique and that every metric term
// references a defined feature.
func (s *Schema) Validate() error {
	seen := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate feature %q", s.Version, f.Name)
		}
		if !f.Source.Kind.Valid() {
			return fmt.Errorf("schema %s: feature %q has invalid statement", s.Version, f.Name)
		}
		if !f.Source.Positional() && f.Source.Column == "" {
			return fmt.Errorf("schema %s: feature %q has no source column", s.Version, f.Name)
		}
		seen[f.Name] = true
	}
	for _, m := range s.Metrics {
		if len(m.Numerator) == 0 || len(m.Denominator) == 0 {
			return fmt.Errorf("schema %s: metric %q needs numerator and denominator", s.Version, m.Name)
		}
		for _, t := range append(append(Expr{}, m.Numerator...), m.Denominator...) {
			if _, ok := s.Feature(t.Feature); !ok {
				return fmt.Errorf("schema %s: metric %q references unknown feature %q", s.Version, m.Name, t.Feature)
			}
		}
	}
	return nil
}

var registry = map[string]*Schema{}

func register(s *Schema) *Schema {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	registry[s.Version] = s
	return s
}

// Lookup returns the schema registered under version.
func Lookup(version string) (*Schema, error) {
	s, ok := registry[version]
	if !ok {
		return nil, fmt.Errorf("unknown schema version %q (known: %v)", version, Versions())
	}
	return s, nil
}

// Versions lists the registered schema versions.
func Versions() []string {
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

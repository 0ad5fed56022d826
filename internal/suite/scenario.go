package suite

import (
	"context"
	"errors"
	"fmt"
)

// Scenario is one parameterization of a generator
type Scenario struct {
	Name   string
	Params map[string]any
	// MinServerVersion skips the case on older backends when set
	MinServerVersion string
}

// Param returns a scenario parameter or the fallback
func (s Scenario) Param(key string, fallback any) any {
	if v, ok := s.Params[key]; ok {
		return v
	}
	return fallback
}

// Case is a concrete runnable test produced by expansion
type Case struct {
	Name      string
	Generator string
	Scenario  Scenario
	gen       Generator
}

// Run executes the case against its generator
func (c Case) Run(ctx context.Context) error {
	return c.gen.Run(ctx, c.Scenario)
}

// Expand turns a generator into its scenario cases.
// A generator without scenarios yields a single case named after the generator.
func Expand(g Generator) ([]Case, error) {
	scenarios := g.Scenarios()
	if len(scenarios) == 0 {
		return []Case{{Name: g.Name(), Generator: g.Name(), gen: g}}, nil
	}

	seen := make(map[string]bool, len(scenarios))
	cases := make([]Case, 0, len(scenarios))
	for _, sc := range scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("%s: scenario without a name", g.Name())
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("%s: duplicate scenario %q", g.Name(), sc.Name)
		}
		seen[sc.Name] = true
		cases = append(cases, Case{
			Name:      fmt.Sprintf("%s (%s)", g.Name(), sc.Name),
			Generator: g.Name(),
			Scenario:  sc,
			gen:       g,
		})
	}
	return cases, nil
}

// SkipError marks a case as skipped instead of failed
type SkipError struct {
	Reason string
}

func (e *SkipError) Error() string {
	return "skipped: " + e.Reason
}

// Skip returns an error that makes the runner record the case as skipped
func Skip(reason string) error {
	return &SkipError{Reason: reason}
}

// IsSkip reports whether err carries a skip and returns its reason
func IsSkip(err error) (string, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason, true
	}
	return "", false
}

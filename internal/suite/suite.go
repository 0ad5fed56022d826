package suite

import (
	"fmt"
)

// Suite is the ordered set of cases of one run
type Suite struct {
	cases []Case
}

// AddCases appends cases in order
func (s *Suite) AddCases(cases ...Case) {
	s.cases = append(s.cases, cases...)
}

// Cases returns the cases in execution order
func (s *Suite) Cases() []Case {
	return s.cases
}

// Len returns the number of cases
func (s *Suite) Len() int {
	return len(s.cases)
}

// Assemble instantiates every surviving generator, injects the fixtures and
// expands it. Injection always precedes expansion. Any error aborts assembly.
func Assemble(modules []Module, f *Fixtures, skip func(name string) bool) (*Suite, error) {
	var factories []Factory
	for _, m := range modules {
		for _, fac := range m.Factories {
			if skip != nil && skip(fac.Name) {
				continue
			}
			factories = append(factories, fac)
		}
	}

	s := &Suite{}
	for _, fac := range factories {
		gen := fac.New()
		if err := gen.SetFixtures(f); err != nil {
			return nil, fmt.Errorf("inject fixtures into %s: %w", fac.Name, err)
		}
		cases, err := Expand(gen)
		if err != nil {
			return nil, fmt.Errorf("expand scenarios of %s: %w", fac.Name, err)
		}
		s.AddCases(cases...)
	}
	return s, nil
}

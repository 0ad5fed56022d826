package registry

import (
	"context"
	"sort"
	"testing"

	"regress/internal/suite"
)

type nopGenerator struct{ suite.Base }

func (nopGenerator) Name() string { return "nop" }
func (nopGenerator) Scenarios() []suite.Scenario { return nil }
func (nopGenerator) Run(ctx context.Context, sc suite.Scenario) error { return nil }

func nop(name string) suite.Factory {
	return suite.Factory{Name: name, New: func() suite.Generator { return &nopGenerator{} }}
}

func TestRegistry_Load(t *testing.T) {
	r := New()
	r.Register("pgadmin.browser.tests.test_login", nop("a"))
	r.Register("pgadmin.browser.tests.test_login", nop("b"))
	r.Register("pgadmin.feature_tests.query_tool", nop("c"))
	r.Register("pgadmin.pem.alerts.tests", nop("d"))
	r.Register("pgadminx.other", nop("e"))

	tests := []struct {
		name     string
		root     string
		exclude  []string
		expected []string
	}{
		{
			name:     "whole root",
			root:     "pgadmin",
			expected: []string{"pgadmin.browser.tests.test_login", "pgadmin.feature_tests.query_tool", "pgadmin.pem.alerts.tests"},
		},
		{
			name:     "sub package",
			root:     "pgadmin.pem",
			expected: []string{"pgadmin.pem.alerts.tests"},
		},
		{
			name:     "exclusions by containment",
			root:     "pgadmin",
			exclude:  []string{"feature_tests", "pem"},
			expected: []string{"pgadmin.browser.tests.test_login"},
		},
		{
			name: "unknown root",
			root: "pgadmin.nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mods := r.Load(tt.root, tt.exclude)
			var keys []string
			for _, m := range mods {
				keys = append(keys, m.Key)
			}
			sort.Strings(keys)
			if len(keys) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, keys)
			}
			for i := range keys {
				if keys[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, keys)
				}
			}
		})
	}

	t.Run("factories are kept per key", func(t *testing.T) {
		mods := r.Load("pgadmin.browser", nil)
		if len(mods) != 1 || len(mods[0].Factories) != 2 {
			t.Fatalf("expected one module with two factories, got %+v", mods)
		}
	})
}

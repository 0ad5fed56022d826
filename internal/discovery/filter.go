package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters SQL test files by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters test files by name pattern using wildcard matching.
// Supports patterns like "*tables.sql" or "*index*"
func (f *Filter) FilterByName(tests []string, pattern string) []string {
	if pattern == "" {
		return tests
	}

	var filtered []string
	for _, test := range tests {
		if matchName(filepath.Base(test), pattern) {
			filtered = append(filtered, test)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// No wildcards: plain substring match
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	if !strings.Contains(pattern, "*") {
		return false
	}

	// Loose match for patterns like "*index*": every literal part must occur
	nonEmpty := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		nonEmpty = true
		if !strings.Contains(name, part) {
			return false
		}
	}
	return nonEmpty
}

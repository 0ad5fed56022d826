package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidServerIndex is returned when --server does not select a configured server
var ErrInvalidServerIndex = errors.New("please pass valid server index value")

// Arguments is the resolved set of command-line options for a run
type Arguments struct {
	Server         int
	Pkg            string
	Exclude        string
	SQLOnly        bool
	NoSQL          bool
	Coverage       bool
	DefaultBrowser string
	SQLFilter      string
	ConfigFile     string

	// Listing options
	Generators bool
	TestCases  bool
}

// Validate checks the server index against the number of configured servers
func (a Arguments) Validate(serverCount int) error {
	if a.Server <= 0 || a.Server > serverCount {
		return fmt.Errorf("%w: %d (configured servers: %d)", ErrInvalidServerIndex, a.Server, serverCount)
	}
	if a.SQLOnly && a.NoSQL {
		return errors.New("--sqlonly and --nosql exclude each other")
	}
	return nil
}

// ExcludeList splits the comma separated --exclude value
func (a Arguments) ExcludeList() []string {
	if a.Exclude == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(a.Exclude, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AllPackages reports whether the run covers every package
func (a Arguments) AllPackages() bool {
	return a.Pkg == "" || a.Pkg == AllPackages
}

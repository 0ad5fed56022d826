package cli

import "regress/internal/config"

// Flags holds command-line flags
type Flags struct {
	Server         int
	Pkg            string
	Exclude        string
	SQLOnly        bool
	NoSQL          bool
	Coverage       bool
	DefaultBrowser string
	SQLFilter      string
	ConfigFile     string
	Generators     bool
	TestCases      bool
}

// ToArguments converts CLI flags to run arguments
func (f *Flags) ToArguments() config.Arguments {
	return config.Arguments{
		Server:         f.Server,
		Pkg:            f.Pkg,
		Exclude:        f.Exclude,
		SQLOnly:        f.SQLOnly,
		NoSQL:          f.NoSQL,
		Coverage:       f.Coverage,
		DefaultBrowser: f.DefaultBrowser,
		SQLFilter:      f.SQLFilter,
		ConfigFile:     f.ConfigFile,
		Generators:     f.Generators,
		TestCases:      f.TestCases,
	}
}

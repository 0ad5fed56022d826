package discovery

import (
	"sort"
	"strings"

	"regress/internal/config"
	"regress/internal/registry"
	"regress/internal/suite"
)

// Discoverer enumerates test modules from a registry
type Discoverer struct {
	registry  *registry.Registry
	root      string
	secondary string
}

// NewDiscoverer creates a Discoverer over the given registry
func NewDiscoverer(reg *registry.Registry) *Discoverer {
	return &Discoverer{
		registry:  reg,
		root:      config.DefaultRootPackage,
		secondary: config.DefaultRootPackage + "." + config.SecondaryPackage,
	}
}

// RootPackage returns the package discovery starts from
func (d *Discoverer) RootPackage(args config.Arguments) string {
	if args.AllPackages() {
		return d.root
	}
	return d.root + "." + args.Pkg
}

// Excludes combines --exclude with the implicit exclusions of the run mode
func (d *Discoverer) Excludes(args config.Arguments, serverMode bool) []string {
	var excludes []string
	if !serverMode {
		excludes = append(excludes, config.BrowserTestsPackage, d.secondary)
	}
	excludes = append(excludes, args.ExcludeList()...)
	if args.SQLOnly && !guiRequested(args.Pkg) {
		excludes = append(excludes, config.GUIPackages...)
	}
	return excludes
}

// Discover returns the primary and secondary modules, each sorted by key
func (d *Discoverer) Discover(args config.Arguments, serverMode bool) (primary, secondary []suite.Module) {
	modules := d.registry.Load(d.RootPackage(args), d.Excludes(args, serverMode))
	primary, secondary = Partition(modules, d.secondary)
	return SortModules(primary), SortModules(secondary)
}

// Partition splits modules on whether their key belongs to the secondary namespace
func Partition(modules []suite.Module, namespace string) (primary, secondary []suite.Module) {
	for _, m := range modules {
		if m.Key == namespace || strings.HasPrefix(m.Key, namespace+".") {
			secondary = append(secondary, m)
		} else {
			primary = append(primary, m)
		}
	}
	return primary, secondary
}

// SortModules returns a copy of modules ordered by key
func SortModules(modules []suite.Module) []suite.Module {
	sorted := make([]suite.Module, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// NeedsBrowser reports whether the run drives the GUI and needs a browser session
func NeedsBrowser(args config.Arguments, excludes []string) bool {
	if args.SQLOnly {
		return false
	}
	allGUIExcluded := true
	for _, pkg := range config.GUIPackages {
		if !contains(excludes, pkg) {
			allGUIExcluded = false
		}
	}
	if allGUIExcluded {
		return false
	}
	return args.AllPackages() || args.Pkg == config.SecondaryPackage || guiRequested(args.Pkg)
}

// IsSkipped reports whether a fully-qualified generator name contains a skip-list entry
func IsSkipped(name string, skipList []string) bool {
	for _, entry := range skipList {
		if entry != "" && strings.Contains(name, entry) {
			return true
		}
	}
	return false
}

// SkipFunc binds a skip list for suite assembly
func SkipFunc(skipList []string) func(string) bool {
	return func(name string) bool {
		return IsSkipped(name, skipList)
	}
}

func guiRequested(pkg string) bool {
	for _, gui := range config.GUIPackages {
		if strings.Contains(pkg, gui) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

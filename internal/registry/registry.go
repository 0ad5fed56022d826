package registry

import (
	"strings"
	"sync"

	"regress/internal/suite"
)

// Registry maps module keys to the generator factories registered under them
type Registry struct {
	mu      sync.Mutex
	modules map[string][]suite.Factory
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{modules: make(map[string][]suite.Factory)}
}

// Default is the process-wide registry filled by test packages in init
var Default = New()

// Register adds a factory to the Default registry
func Register(key string, f suite.Factory) {
	Default.Register(key, f)
}

// Register adds a factory under a module key
func (r *Registry) Register(key string, f suite.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[key] = append(r.modules[key], f)
}

// Load returns the modules below root whose key contains none of the excluded packages.
// The order is unspecified; callers sort.
func (r *Registry) Load(root string, exclude []string) []suite.Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []suite.Module
	for key, factories := range r.modules {
		if key != root && !strings.HasPrefix(key, root+".") {
			continue
		}
		if excluded(key, exclude) {
			continue
		}
		fs := make([]suite.Factory, len(factories))
		copy(fs, factories)
		out = append(out, suite.Module{Key: key, Factories: fs})
	}
	return out
}

// Len returns the number of registered modules
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.modules)
}

func excluded(key string, exclude []string) bool {
	for _, pkg := range exclude {
		if pkg != "" && strings.Contains(key, pkg) {
			return true
		}
	}
	return false
}

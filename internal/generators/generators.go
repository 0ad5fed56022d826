// Package generators holds the built-in test modules. Each file registers its
// generators with the default registry from init, keyed by module.
package generators

import (
	"errors"

	"regress/internal/registry"
	"regress/internal/suite"
)

var (
	errNoClient = errors.New("test client is not initialized")
	errNoPEM    = errors.New("pem connection is not initialized")
)

// register adds a generator under a module key; its name is "<module>.<name>"
func register(module, name string, newFn func(name string) suite.Generator) {
	full := module + "." + name
	registry.Register(module, suite.Factory{
		Name: full,
		New:  func() suite.Generator { return newFn(full) },
	})
}

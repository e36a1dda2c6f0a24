package catalog

import (
	"github.com/lsst-sims/catalogs"
)

var registry = catalogs.NewRegistry[*Definition]("catalog")

// Register makes a catalog available by name. It's meant to be called at startup.
func Register(name string, factory func() (*Definition, error)) error {
	return registry.Register(name, factory)
}

func Lookup(name string) (*Definition, error) {
	return registry.New(name)
}

func Names() []string {
	return registry.Names()
}

// ResetRegistry forgets all registered catalogs. Only meant for tests.
func ResetRegistry() {
	registry.Reset()
}

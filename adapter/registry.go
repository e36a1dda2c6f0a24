package adapter

import (
	"github.com/lsst-sims/catalogs"
)

var registry = catalogs.NewRegistry[*Adapter]("adapter")

// Register makes an adapter available by name. It's meant to be called at startup.
func Register(name string, factory func() (*Adapter, error)) error {
	return registry.Register(name, factory)
}

// Lookup creates the adapter registered under the given name.
func Lookup(name string) (*Adapter, error) {
	return registry.New(name)
}

func Names() []string {
	return registry.Names()
}

// ResetRegistry forgets all registered adapters. Only meant for tests.
func ResetRegistry() {
	registry.Reset()
}

package catalogs

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Registry maps names to factories. It's meant to be populated at startup and only read afterwards.
type Registry[T any] struct {
	kind      string
	mutex     sync.RWMutex
	factories map[string]func() (T, error)
}

func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:      kind,
		factories: make(map[string]func() (T, error)),
	}
}

func (r *Registry[T]) Register(name string, factory func() (T, error)) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.factories[name]; ok {
		return errors.Errorf("%s with name %s already registered", r.kind, name)
	}
	r.factories[name] = factory
	return nil
}

func (r *Registry[T]) New(name string) (T, error) {
	r.mutex.RLock()
	factory, ok := r.factories[name]
	r.mutex.RUnlock()

	if !ok {
		var zero T
		return zero, errors.Errorf("no such %s: %s, available: %v", r.kind, name, r.Names())
	}
	out, err := factory()
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "couldn't create %s %s", r.kind, name)
	}
	return out, nil
}

func (r *Registry[T]) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Reset removes all registrations. Only meant for tests.
func (r *Registry[T]) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.factories = make(map[string]func() (T, error))
}

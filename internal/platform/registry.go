package platform

import "fmt"

// Factory builds a fresh adapter. Construction happens per Resolve call so
// adapters never share mutable state across publish attempts, and a
// destination that is registered but never resolved costs nothing.
type Factory func() Platform

type Registry struct {
	names     []string
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, factory Factory) {
	if _, exists := r.factories[name]; !exists {
		r.names = append(r.names, name)
	}
	r.factories[name] = factory
}

func (r *Registry) Resolve(name string) (Platform, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDestination, name)
	}
	return factory(), nil
}

// Names returns registered destination names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

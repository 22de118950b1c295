package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Factory construye una instancia; la config la captura el closure.
type Factory func() (Provider, error)

// Registry mantiene factories e instancias ya construidas.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	cache     map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		cache:     make(map[string]Provider),
	}
}

// Register se llama al arrancar, una vez por provider soportado.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.cache, name)
}

// Get retorna la instancia cacheada o la construye. ErrNotRegistered si no hay factory.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	if p, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return p, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.cache[name]; ok {
		return p, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	p, err := f()
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", name, err)
	}
	r.cache[name] = p
	return p, nil
}

// Names lista los providers registrados, ordenados.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for n := range r.factories {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

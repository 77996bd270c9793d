package warehouse

import (
	"fmt"
	"sync"
)

// ExecutorFactory builds an Executor from a backend profile path.
type ExecutorFactory func(profilePath string) (Executor, error)

// Registry manages warehouse backend factories (hosted API, databricks,
// snowflake).
type Registry interface {
	// Register adds a new backend factory.
	Register(backend string, factory ExecutorFactory) error
	// Create instantiates an executor for the named backend.
	Create(backend, profilePath string) (Executor, error)
	// ListBackends returns the registered backend names.
	ListBackends() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]ExecutorFactory
}

func NewRegistry(factories map[string]ExecutorFactory) Registry {
	r := &registry{factories: make(map[string]ExecutorFactory)}
	for backend, factory := range factories {
		_ = r.Register(backend, factory)
	}
	return r
}

func (r *registry) Register(backend string, factory ExecutorFactory) error {
	if backend == "" {
		return fmt.Errorf("backend name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[backend]; exists {
		return fmt.Errorf("backend %q is already registered", backend)
	}
	r.factories[backend] = factory
	return nil
}

func (r *registry) Create(backend, profilePath string) (Executor, error) {
	r.mu.RLock()
	factory, exists := r.factories[backend]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("backend %q is not registered", backend)
	}
	return factory(profilePath)
}

func (r *registry) ListBackends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backends := make([]string, 0, len(r.factories))
	for backend := range r.factories {
		backends = append(backends, backend)
	}
	return backends
}

package cpu

import (
	"fmt"
	"sync"
)

// BackendFactory constructs a Backend. Factories register themselves from
// init so backend availability is decided at link time.
type BackendFactory func() Backend

var (
	backendsMu       sync.RWMutex
	backendFactories = make(map[string]BackendFactory)
	backendOrder     []string
)

// RegisterBackend wires a named backend into Setup's selection. It panics
// when attempting to register the same name more than once so mistakes are
// caught during init.
func RegisterBackend(name string, factory BackendFactory) {
	if name == "" || name == "any" {
		panic("cpu: backend name must be non-empty and not \"any\"")
	}
	if factory == nil {
		panic("cpu: backend factory must be non-nil")
	}

	backendsMu.Lock()
	defer backendsMu.Unlock()

	if _, exists := backendFactories[name]; exists {
		panic(fmt.Sprintf("cpu: backend %q already registered", name))
	}
	backendFactories[name] = factory
	backendOrder = append(backendOrder, name)
}

// newBackend resolves the configured backend name. "any" takes the first
// registered backend.
func newBackend(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	if name == "any" {
		if len(backendOrder) == 0 {
			return nil, ErrNoBackend
		}
		return backendFactories[backendOrder[0]](), nil
	}
	factory, ok := backendFactories[name]
	if !ok {
		return nil, fmt.Errorf("cpu: no backend registered for %q: %w", name, ErrNoBackend)
	}
	return factory(), nil
}

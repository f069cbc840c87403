package usercode

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nemanja-m/taskenv/pkg/core"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]core.Factory)
)

// Register adds a factory to the process-wide registry, typically from an
// init function of the package that defines the user code.
func Register(name string, factory core.Factory) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		return fmt.Errorf("user code already registered: %s", name)
	}
	registry[name] = factory
	return nil
}

func Get(name string) (core.Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("user code not found: %s", name)
	}
	return factory, nil
}

// List returns the registered names in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

func snapshotRegistry() map[string]core.Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return maps.Clone(registry)
}

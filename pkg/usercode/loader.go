package usercode

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nemanja-m/taskenv/pkg/core"
)

var _ core.UserCodeClassLoader = (*TestingUserCodeClassLoader)(nil)

// TestingUserCodeClassLoader resolves user code from a fixed set of factories.
type TestingUserCodeClassLoader struct {
	mu        sync.Mutex
	factories map[string]core.Factory
	hooks     map[string]func()
	hookOrder []string
	released  bool
}

// NewTestingUserCodeClassLoader copies factories; a nil map yields an empty loader.
func NewTestingUserCodeClassLoader(factories map[string]core.Factory) *TestingUserCodeClassLoader {
	f := maps.Clone(factories)
	if f == nil {
		f = make(map[string]core.Factory)
	}
	return &TestingUserCodeClassLoader{
		factories: f,
		hooks:     make(map[string]func()),
	}
}

// FromRegistry returns a loader over a snapshot of the process-wide registry.
func FromRegistry() *TestingUserCodeClassLoader {
	return NewTestingUserCodeClassLoader(snapshotRegistry())
}

func (l *TestingUserCodeClassLoader) Lookup(name string) (core.Factory, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	factory, ok := l.factories[name]
	return factory, ok
}

// Instantiate looks up name and invokes its factory.
func (l *TestingUserCodeClassLoader) Instantiate(name string) (any, error) {
	factory, ok := l.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("user code not found: %s", name)
	}
	value, err := factory()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate %s: %w", name, err)
	}
	return value, nil
}

func (l *TestingUserCodeClassLoader) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Sorted(maps.Keys(l.factories))
}

// RegisterReleaseHookIfAbsent keeps the first hook registered under name.
func (l *TestingUserCodeClassLoader) RegisterReleaseHookIfAbsent(name string, hook func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.hooks[name]; exists || hook == nil {
		return
	}
	l.hooks[name] = hook
	l.hookOrder = append(l.hookOrder, name)
}

// Release runs release hooks once, in registration order.
func (l *TestingUserCodeClassLoader) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	hooks := make([]func(), 0, len(l.hookOrder))
	for _, name := range l.hookOrder {
		hooks = append(hooks, l.hooks[name])
	}
	l.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}
}

func (l *TestingUserCodeClassLoader) IsReleased() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}

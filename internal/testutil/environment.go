// Package testutil provides helpers for tests that run code against a mock
// task environment.
package testutil

import (
	"testing"

	"github.com/nemanja-m/taskenv/pkg/mockenv"
)

// BuildEnvironment builds b and registers cleanup of the environment's
// resources: the IO manager is closed, the memory manager shut down and the
// user code loader released. A nil builder uses the defaults.
func BuildEnvironment(t testing.TB, b *mockenv.Builder) *mockenv.Environment {
	t.Helper()

	if b == nil {
		b = mockenv.NewBuilder()
	}
	env := b.Build()

	t.Cleanup(func() {
		if err := env.IOManager().Close(); err != nil {
			t.Errorf("failed to close IO manager: %v", err)
		}
		if mm := env.MemoryManager(); mm != nil {
			mm.Shutdown()
		}
		if loader := env.UserCodeClassLoader(); loader != nil {
			loader.Release()
		}
	})
	return env
}

// TempDirBuilder returns a builder whose default IO manager spills under t.TempDir().
func TempDirBuilder(t testing.TB) *mockenv.Builder {
	t.Helper()
	return mockenv.NewBuilder().SetIOTempDirs(t.TempDir())
}

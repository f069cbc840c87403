package usercode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/taskenv/pkg/core"
)

type wordSplitter struct{}

func TestLoader_LookupAndInstantiate(t *testing.T) {
	loader := NewTestingUserCodeClassLoader(map[string]core.Factory{
		"splitter": func() (any, error) { return wordSplitter{}, nil },
		"broken":   func() (any, error) { return nil, errors.New("boom") },
	})

	_, ok := loader.Lookup("splitter")
	require.True(t, ok)
	_, ok = loader.Lookup("missing")
	require.False(t, ok)

	v, err := loader.Instantiate("splitter")
	require.NoError(t, err)
	require.IsType(t, wordSplitter{}, v)

	_, err = loader.Instantiate("broken")
	require.ErrorContains(t, err, "boom")

	_, err = loader.Instantiate("missing")
	require.ErrorContains(t, err, "user code not found")

	require.Equal(t, []string{"broken", "splitter"}, loader.Names())
}

func TestLoader_NilFactories(t *testing.T) {
	loader := NewTestingUserCodeClassLoader(nil)
	require.Empty(t, loader.Names())
}

func TestLoader_ReleaseHooks(t *testing.T) {
	loader := NewTestingUserCodeClassLoader(nil)

	var calls []string
	loader.RegisterReleaseHookIfAbsent("first", func() { calls = append(calls, "first") })
	loader.RegisterReleaseHookIfAbsent("second", func() { calls = append(calls, "second") })
	loader.RegisterReleaseHookIfAbsent("first", func() { calls = append(calls, "replaced") })

	loader.Release()
	loader.Release()

	require.True(t, loader.IsReleased())
	require.Equal(t, []string{"first", "second"}, calls)
}

func TestRegistry(t *testing.T) {
	name := "registry-test-job"
	require.NoError(t, Register(name, func() (any, error) { return 42, nil }))
	require.Error(t, Register(name, func() (any, error) { return 0, nil }))

	factory, err := Get(name)
	require.NoError(t, err)
	v, err := factory()
	require.NoError(t, err)
	require.Equal(t, 42, v)

	_, err = Get("not-registered")
	require.Error(t, err)

	require.Contains(t, List(), name)

	loader := FromRegistry()
	_, ok := loader.Lookup(name)
	require.True(t, ok)
}

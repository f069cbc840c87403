package memory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	m := NewBuilder().Build()

	require.Equal(t, DefaultMemorySize, m.MemorySize())
	require.Equal(t, DefaultPageSize, m.PageSize())
	require.Equal(t, DefaultMemorySize, m.AvailableMemory())
	require.Equal(t, 1024, m.AvailablePages())
	require.True(t, m.VerifyEmpty())
}

func TestBuilder_CustomSizes(t *testing.T) {
	m := NewBuilder().SetMemorySize(1 << 20).SetPageSize(8 * 1024).Build()

	require.Equal(t, int64(1048576), m.MemorySize())
	require.Equal(t, 8*1024, m.PageSize())
	require.Equal(t, 128, m.AvailablePages())
}

func TestBuilder_InvalidSizes(t *testing.T) {
	m := NewBuilder().SetMemorySize(-5).SetPageSize(1).Build()

	require.Equal(t, int64(0), m.MemorySize())
	require.Equal(t, DefaultPageSize, m.PageSize())
}

func TestAllocate_AndRelease(t *testing.T) {
	m := NewBuilder().SetMemorySize(4 * DefaultPageSize).Build()
	owner := "operator-1"

	pages, err := m.Allocate(owner, 3)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for _, page := range pages {
		require.Len(t, page, DefaultPageSize)
	}
	require.Equal(t, 1, m.AvailablePages())
	require.False(t, m.VerifyEmpty())

	_, err = m.Allocate(owner, 2)
	require.ErrorIs(t, err, ErrInsufficientMemory)

	m.Release(owner)
	require.Equal(t, 4, m.AvailablePages())
	require.True(t, m.VerifyEmpty())
}

func TestAllocate_InvalidArguments(t *testing.T) {
	m := NewBuilder().Build()

	_, err := m.Allocate(nil, 1)
	require.ErrorIs(t, err, ErrNilOwner)

	_, err = m.Allocate("owner", -1)
	require.Error(t, err)

	_, err = m.Allocate("owner", math.MaxInt)
	require.ErrorIs(t, err, ErrInsufficientMemory)
	require.True(t, m.VerifyEmpty())

	pages, err := m.Allocate("owner", 0)
	require.NoError(t, err)
	require.Empty(t, pages)
}

func TestReserveMemory(t *testing.T) {
	m := NewBuilder().SetMemorySize(1000).Build()

	require.NoError(t, m.ReserveMemory("a", 600))
	require.ErrorIs(t, m.ReserveMemory("b", 600), ErrInsufficientMemory)
	require.Equal(t, int64(400), m.AvailableMemory())

	// Releasing more than reserved only frees what the owner holds.
	m.ReleaseMemory("a", 10_000)
	require.Equal(t, int64(1000), m.AvailableMemory())

	// Releasing for an unknown owner is a no-op.
	m.ReleaseMemory("unknown", 100)
	require.True(t, m.VerifyEmpty())
}

func TestReleaseMemory_Partial(t *testing.T) {
	m := NewBuilder().SetMemorySize(1000).Build()

	require.NoError(t, m.ReserveMemory("a", 500))
	m.ReleaseMemory("a", 200)
	require.Equal(t, int64(700), m.AvailableMemory())
	m.ReleaseMemory("a", 300)
	require.True(t, m.VerifyEmpty())
}

func TestWaitForMemory_UnblocksOnRelease(t *testing.T) {
	m := NewBuilder().SetMemorySize(100).Build()
	require.NoError(t, m.ReserveMemory("a", 100))

	done := make(chan error, 1)
	go func() {
		done <- m.WaitForMemory(context.Background(), "b", 50)
	}()

	select {
	case <-done:
		t.Fatal("WaitForMemory returned before memory was released")
	case <-time.After(20 * time.Millisecond):
	}

	m.ReleaseMemory("a", 100)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("WaitForMemory did not return after release")
	}
	require.Equal(t, int64(50), m.AvailableMemory())
}

func TestWaitForMemory_ContextCanceled(t *testing.T) {
	m := NewBuilder().SetMemorySize(100).Build()
	require.NoError(t, m.ReserveMemory("a", 100))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := m.WaitForMemory(ctx, "b", 10)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestWaitForMemory_ExceedsCapacity(t *testing.T) {
	m := NewBuilder().SetMemorySize(100).Build()
	err := m.WaitForMemory(context.Background(), "a", 101)
	require.ErrorIs(t, err, ErrInsufficientMemory)
}

func TestWaitForMemory_NegativeSize(t *testing.T) {
	m := NewBuilder().SetMemorySize(1024 * 1024).Build()

	err := m.WaitForMemory(context.Background(), "op", -4096)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInsufficientMemory)
	require.Equal(t, m.MemorySize(), m.AvailableMemory())
	require.True(t, m.VerifyEmpty())
}

func TestShutdown(t *testing.T) {
	m := NewBuilder().Build()
	_, err := m.Allocate("a", 2)
	require.NoError(t, err)

	m.Shutdown()
	m.Shutdown()

	require.True(t, m.IsShutdown())
	require.True(t, m.VerifyEmpty())

	_, err = m.Allocate("a", 1)
	require.ErrorIs(t, err, ErrShutdown)
	require.ErrorIs(t, m.ReserveMemory("a", 1), ErrShutdown)
}

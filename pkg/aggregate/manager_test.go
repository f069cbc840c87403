package aggregate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateGlobalAggregate_Sum(t *testing.T) {
	m := NewTestGlobalAggregateManager()
	ctx := context.Background()

	for _, v := range []int64{1, 2, 3} {
		_, err := m.UpdateGlobalAggregate(ctx, "records", v, Int64Sum)
		require.NoError(t, err)
	}

	result, err := m.UpdateGlobalAggregate(ctx, "records", int64(4), Int64Sum)
	require.NoError(t, err)
	require.Equal(t, int64(10), result)

	other, err := m.UpdateGlobalAggregate(ctx, "other", int64(1), Int64Sum)
	require.NoError(t, err)
	require.Equal(t, int64(1), other)
}

func TestUpdateGlobalAggregate_Max(t *testing.T) {
	m := NewTestGlobalAggregateManager()
	ctx := context.Background()

	var result any
	var err error
	for _, v := range []int64{5, 9, 2} {
		result, err = m.UpdateGlobalAggregate(ctx, "watermark", v, Int64Max)
		require.NoError(t, err)
	}
	require.Equal(t, int64(9), result)
}

func TestUpdateGlobalAggregate_CustomResult(t *testing.T) {
	m := NewTestGlobalAggregateManager()
	avg := Funcs{
		Create: func() any { return [2]float64{} },
		Merge: func(value, acc any) any {
			a := acc.([2]float64)
			return [2]float64{a[0] + value.(float64), a[1] + 1}
		},
		Result: func(acc any) any {
			a := acc.([2]float64)
			return a[0] / a[1]
		},
	}

	_, err := m.UpdateGlobalAggregate(context.Background(), "avg", 2.0, avg)
	require.NoError(t, err)
	result, err := m.UpdateGlobalAggregate(context.Background(), "avg", 4.0, avg)
	require.NoError(t, err)
	require.Equal(t, 3.0, result)

	acc, ok := m.Accumulator("avg")
	require.True(t, ok)
	require.Equal(t, [2]float64{6, 2}, acc)
}

func TestUpdateGlobalAggregate_Errors(t *testing.T) {
	m := NewTestGlobalAggregateManager()

	_, err := m.UpdateGlobalAggregate(context.Background(), "x", int64(1), nil)
	require.ErrorIs(t, err, ErrNilFunction)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.UpdateGlobalAggregate(ctx, "x", int64(1), Int64Sum)
	require.ErrorIs(t, err, context.Canceled)

	_, ok := m.Accumulator("x")
	require.False(t, ok)
}

func TestUpdateGlobalAggregate_Concurrent(t *testing.T) {
	m := NewTestGlobalAggregateManager()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				_, _ = m.UpdateGlobalAggregate(context.Background(), "n", int64(1), Int64Sum)
			}
		})
	}
	wg.Wait()

	acc, _ := m.Accumulator("n")
	require.Equal(t, int64(400), acc)
}

package aggregate

import (
	"context"
	"errors"
	"sync"

	"github.com/nemanja-m/taskenv/pkg/core"
)

var ErrNilFunction = errors.New("aggregate function must not be nil")

var _ core.GlobalAggregateManager = (*TestGlobalAggregateManager)(nil)

// TestGlobalAggregateManager keeps named accumulators in memory. Each update
// folds value into the accumulator and returns the current result.
type TestGlobalAggregateManager struct {
	mu           sync.Mutex
	accumulators map[string]any
}

func NewTestGlobalAggregateManager() *TestGlobalAggregateManager {
	return &TestGlobalAggregateManager{accumulators: make(map[string]any)}
}

func (m *TestGlobalAggregateManager) UpdateGlobalAggregate(ctx context.Context, name string, value any, fn core.AggregateFunction) (any, error) {
	if fn == nil {
		return nil, ErrNilFunction
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	acc, ok := m.accumulators[name]
	if !ok {
		acc = fn.CreateAccumulator()
	}
	acc = fn.Add(value, acc)
	m.accumulators[name] = acc
	return fn.GetResult(acc), nil
}

// Accumulator returns the raw accumulator stored under name.
func (m *TestGlobalAggregateManager) Accumulator(name string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accumulators[name]
	return acc, ok
}

// Funcs adapts plain functions to core.AggregateFunction.
type Funcs struct {
	Create func() any
	Merge  func(value, accumulator any) any
	Result func(accumulator any) any
}

func (f Funcs) CreateAccumulator() any {
	return f.Create()
}

func (f Funcs) Add(value, accumulator any) any {
	return f.Merge(value, accumulator)
}

// GetResult returns the accumulator itself when Result is nil.
func (f Funcs) GetResult(accumulator any) any {
	if f.Result == nil {
		return accumulator
	}
	return f.Result(accumulator)
}

// Int64Sum sums int64 values.
var Int64Sum core.AggregateFunction = Funcs{
	Create: func() any { return int64(0) },
	Merge:  func(value, acc any) any { return acc.(int64) + value.(int64) },
}

// Int64Max keeps the largest int64 value seen.
var Int64Max core.AggregateFunction = Funcs{
	Create: func() any { return nil },
	Merge: func(value, acc any) any {
		if acc == nil || value.(int64) > acc.(int64) {
			return value
		}
		return acc
	},
}

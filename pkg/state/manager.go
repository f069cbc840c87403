package state

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/nemanja-m/taskenv/pkg/core"
)

var ErrUnknownCheckpoint = errors.New("unknown checkpoint")

var _ core.TaskStateManager = (*TestTaskStateManager)(nil)

// TestTaskStateManager records reported snapshots in memory and serves a
// fixed restore state.
type TestTaskStateManager struct {
	mu        sync.Mutex
	reported  map[int64]core.TaskStateSnapshot
	restore   core.TaskStateSnapshot
	completed []int64
	aborted   []int64
	waiters   map[int64]chan struct{}
}

func NewTestTaskStateManager() *TestTaskStateManager {
	return &TestTaskStateManager{
		reported: make(map[int64]core.TaskStateSnapshot),
		restore:  make(core.TaskStateSnapshot),
		waiters:  make(map[int64]chan struct{}),
	}
}

// SetRestoreState sets the state returned by PrioritizedOperatorState.
func (m *TestTaskStateManager) SetRestoreState(snapshot core.TaskStateSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restore = cloneSnapshot(snapshot)
}

func (m *TestTaskStateManager) ReportTaskStateSnapshots(checkpointID int64, snapshot core.TaskStateSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reported[checkpointID] = cloneSnapshot(snapshot)
	if ch, ok := m.waiters[checkpointID]; ok {
		close(ch)
		delete(m.waiters, checkpointID)
	}
}

func (m *TestTaskStateManager) PrioritizedOperatorState(operatorID string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.restore[operatorID]
	if !ok {
		return nil, false
	}
	return slices.Clone(state), true
}

func (m *TestTaskStateManager) NotifyCheckpointComplete(checkpointID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reported[checkpointID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownCheckpoint, checkpointID)
	}
	m.completed = append(m.completed, checkpointID)
	return nil
}

func (m *TestTaskStateManager) NotifyCheckpointAborted(checkpointID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborted = append(m.aborted, checkpointID)
}

// WaitForReportedCheckpoint blocks until checkpointID is reported or ctx is done.
func (m *TestTaskStateManager) WaitForReportedCheckpoint(ctx context.Context, checkpointID int64) (core.TaskStateSnapshot, error) {
	m.mu.Lock()
	if snapshot, ok := m.reported[checkpointID]; ok {
		m.mu.Unlock()
		return cloneSnapshot(snapshot), nil
	}
	ch, ok := m.waiters[checkpointID]
	if !ok {
		ch = make(chan struct{})
		m.waiters[checkpointID] = ch
	}
	m.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-ch:
	}
	return m.ReportedSnapshot(checkpointID)
}

func (m *TestTaskStateManager) ReportedSnapshot(checkpointID int64) (core.TaskStateSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot, ok := m.reported[checkpointID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCheckpoint, checkpointID)
	}
	return cloneSnapshot(snapshot), nil
}

// ReportedCheckpoints returns the reported checkpoint IDs in ascending order.
func (m *TestTaskStateManager) ReportedCheckpoints() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.reported))
}

func (m *TestTaskStateManager) CompletedCheckpoints() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.completed)
}

func (m *TestTaskStateManager) AbortedCheckpoints() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.aborted)
}

func cloneSnapshot(snapshot core.TaskStateSnapshot) core.TaskStateSnapshot {
	out := make(core.TaskStateSnapshot, len(snapshot))
	for operatorID, state := range snapshot {
		out[operatorID] = slices.Clone(state)
	}
	return out
}

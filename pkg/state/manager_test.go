package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/taskenv/pkg/core"
)

func TestReportAndNotify(t *testing.T) {
	m := NewTestTaskStateManager()

	m.ReportTaskStateSnapshots(2, core.TaskStateSnapshot{"op-1": []byte("s2")})
	m.ReportTaskStateSnapshots(1, core.TaskStateSnapshot{"op-1": []byte("s1")})

	require.Equal(t, []int64{1, 2}, m.ReportedCheckpoints())

	require.NoError(t, m.NotifyCheckpointComplete(1))
	require.ErrorIs(t, m.NotifyCheckpointComplete(5), ErrUnknownCheckpoint)
	m.NotifyCheckpointAborted(2)

	require.Equal(t, []int64{1}, m.CompletedCheckpoints())
	require.Equal(t, []int64{2}, m.AbortedCheckpoints())

	snapshot, err := m.ReportedSnapshot(2)
	require.NoError(t, err)
	require.Equal(t, []byte("s2"), snapshot["op-1"])
}

func TestReport_CopiesSnapshot(t *testing.T) {
	m := NewTestTaskStateManager()
	state := []byte("before")
	m.ReportTaskStateSnapshots(1, core.TaskStateSnapshot{"op": state})
	copy(state, "after!")

	snapshot, err := m.ReportedSnapshot(1)
	require.NoError(t, err)
	require.Equal(t, "before", string(snapshot["op"]))
}

func TestPrioritizedOperatorState(t *testing.T) {
	m := NewTestTaskStateManager()

	_, ok := m.PrioritizedOperatorState("op")
	require.False(t, ok)

	m.SetRestoreState(core.TaskStateSnapshot{"op": []byte("restored")})
	state, ok := m.PrioritizedOperatorState("op")
	require.True(t, ok)
	require.Equal(t, "restored", string(state))
}

func TestWaitForReportedCheckpoint(t *testing.T) {
	m := NewTestTaskStateManager()

	go func() {
		time.Sleep(10 * time.Millisecond)
		m.ReportTaskStateSnapshots(7, core.TaskStateSnapshot{"op": []byte("x")})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	snapshot, err := m.WaitForReportedCheckpoint(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "x", string(snapshot["op"]))

	// Already reported checkpoints return immediately.
	_, err = m.WaitForReportedCheckpoint(ctx, 7)
	require.NoError(t, err)
}

func TestWaitForReportedCheckpoint_Timeout(t *testing.T) {
	m := NewTestTaskStateManager()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := m.WaitForReportedCheckpoint(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

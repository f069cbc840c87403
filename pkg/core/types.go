package core

import "context"

// InputSplit is a unit of input handed to a source task.
type InputSplit interface {
	SplitNumber() int
}

// InputSplitProvider hands out input splits on demand. It returns a nil split
// and a nil error once all splits are consumed.
type InputSplitProvider interface {
	NextInputSplit(ctx context.Context, loader UserCodeClassLoader) (InputSplit, error)
}

// TaskStateSnapshot maps operator IDs to their serialized state.
type TaskStateSnapshot map[string][]byte

type TaskStateManager interface {
	ReportTaskStateSnapshots(checkpointID int64, snapshot TaskStateSnapshot)
	PrioritizedOperatorState(operatorID string) ([]byte, bool)
	NotifyCheckpointComplete(checkpointID int64) error
	NotifyCheckpointAborted(checkpointID int64)
}

type AggregateFunction interface {
	CreateAccumulator() any
	Add(value any, accumulator any) any
	GetResult(accumulator any) any
}

type GlobalAggregateManager interface {
	UpdateGlobalAggregate(ctx context.Context, name string, value any, fn AggregateFunction) (any, error)
}

// Factory creates an instance of user code.
type Factory func() (any, error)

// UserCodeClassLoader resolves user code by name. It stands in for a class
// loader: Lookup replaces class resolution, release hooks run on Release.
type UserCodeClassLoader interface {
	Lookup(name string) (Factory, bool)
	RegisterReleaseHookIfAbsent(name string, hook func())
	Release()
}

type Counter interface {
	Inc()
	IncBy(n int64)
	Dec()
	DecBy(n int64)
	Count() int64
}

type Gauge func() any

type TaskMetricGroup interface {
	Counter(name string) Counter
	Gauge(name string, gauge Gauge)
	AddGroup(name string) TaskMetricGroup
	ScopeComponents() []string
}

type TaskManagerRuntimeInfo interface {
	Configuration() *Configuration
	TmpDirectories() []string
	ShouldExitOnFatalError() bool
	TaskManagerExternalAddress() string
	TaskManagerBindAddress() string
}

type BlockWriter interface {
	ChannelID() ChannelID
	WriteBlock(block []byte) error
	Close() error
}

// BlockReader returns io.EOF from ReadBlock after the last block.
type BlockReader interface {
	ChannelID() ChannelID
	ReadBlock() ([]byte, error)
	Close() error
}

type IOManager interface {
	SpillingDirectories() []string
	CreateChannel() (ChannelID, error)
	CreateWriter(id ChannelID) (BlockWriter, error)
	CreateReader(id ChannelID) (BlockReader, error)
	DeleteChannel(id ChannelID) error
	Close() error
}

type MemoryManager interface {
	MemorySize() int64
	AvailableMemory() int64
	PageSize() int
	Allocate(owner any, numPages int) ([][]byte, error)
	Release(owner any)
	ReserveMemory(owner any, size int64) error
	ReleaseMemory(owner any, size int64)
	VerifyEmpty() bool
	Shutdown()
	IsShutdown() bool
}

type ExternalResourceInfo interface {
	Property(key string) (string, bool)
	Keys() []string
}

type ExternalResourceInfoProvider interface {
	ExternalResourceInfos(resourceName string) []ExternalResourceInfo
}

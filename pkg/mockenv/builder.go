package mockenv

import (
	"github.com/nemanja-m/taskenv/internal/shared/config"
	"github.com/nemanja-m/taskenv/internal/shared/logging"
	"github.com/nemanja-m/taskenv/pkg/aggregate"
	"github.com/nemanja-m/taskenv/pkg/core"
	"github.com/nemanja-m/taskenv/pkg/inputsplit"
	"github.com/nemanja-m/taskenv/pkg/iomanager"
	"github.com/nemanja-m/taskenv/pkg/memory"
	"github.com/nemanja-m/taskenv/pkg/metrics"
	"github.com/nemanja-m/taskenv/pkg/resource"
	"github.com/nemanja-m/taskenv/pkg/runtimeinfo"
	"github.com/nemanja-m/taskenv/pkg/state"
	"github.com/nemanja-m/taskenv/pkg/usercode"
)

const (
	DefaultTaskName                = "mock-task"
	DefaultBufferSize              = 16
	DefaultParallelism             = 1
	DefaultMaxParallelism          = 1
	DefaultSubtaskIndex            = 0
	DefaultManagedMemorySize int64 = 32 * 1024 * 1024 // 32MiB
)

// Builder accumulates the parameters of a mock task environment. Every field
// starts with a working default except the IO manager, which Build creates
// only when none was set. A Builder is meant to be used for a single Build.
type Builder struct {
	taskName                     string
	jobID                        core.JobID
	jobVertexID                  core.JobVertexID
	inputSplitProvider           core.InputSplitProvider
	bufferSize                   int
	taskStateManager             core.TaskStateManager
	aggregateManager             core.GlobalAggregateManager
	taskConfiguration            *core.Configuration
	executionConfig              *core.ExecutionConfig
	maxParallelism               int
	parallelism                  int
	subtaskIndex                 int
	userCodeClassLoader          core.UserCodeClassLoader
	metricGroup                  core.TaskMetricGroup
	runtimeInfo                  core.TaskManagerRuntimeInfo
	ioManager                    core.IOManager
	memoryManager                core.MemoryManager
	externalResourceInfoProvider core.ExternalResourceInfoProvider

	memoryPageSize int
	ioTempDirs     []string
	logger         logging.Logger
}

func NewBuilder() *Builder {
	b := &Builder{
		taskName:                     DefaultTaskName,
		jobID:                        core.NewJobID(),
		jobVertexID:                  core.NewJobVertexID(),
		inputSplitProvider:           inputsplit.NewMockInputSplitProvider(),
		bufferSize:                   DefaultBufferSize,
		taskStateManager:             state.NewTestTaskStateManager(),
		aggregateManager:             aggregate.NewTestGlobalAggregateManager(),
		taskConfiguration:            core.NewConfiguration(),
		executionConfig:              core.NewExecutionConfig(),
		maxParallelism:               DefaultMaxParallelism,
		parallelism:                  DefaultParallelism,
		subtaskIndex:                 DefaultSubtaskIndex,
		userCodeClassLoader:          usercode.NewTestingUserCodeClassLoader(nil),
		metricGroup:                  metrics.NewUnregisteredTaskMetricGroup(),
		runtimeInfo:                  runtimeinfo.NewTestingTaskManagerRuntimeInfo(),
		externalResourceInfoProvider: resource.NoExternalResources,
		memoryPageSize:               memory.DefaultPageSize,
		logger:                       logging.NewNopLogger(),
	}
	b.memoryManager = b.buildMemoryManager(DefaultManagedMemorySize)
	return b
}

// NewBuilderFromConfig seeds task identity, managed memory and IO temp
// directories from cfg. Zero values in cfg and all other fields keep their
// defaults.
func NewBuilderFromConfig(cfg *config.EnvironmentConfig) *Builder {
	b := NewBuilder()
	if cfg == nil {
		return b
	}

	if cfg.Memory.PageSize > 0 {
		b.memoryPageSize = cfg.Memory.PageSize
	}
	if cfg.Task.Name != "" {
		b.SetTaskName(cfg.Task.Name)
	}
	if cfg.Task.BufferSize > 0 {
		b.SetBufferSize(cfg.Task.BufferSize)
	}
	if cfg.Task.Parallelism > 0 {
		b.SetParallelism(cfg.Task.Parallelism)
	}
	if cfg.Task.MaxParallelism > 0 {
		b.SetMaxParallelism(cfg.Task.MaxParallelism)
	}
	if cfg.Task.SubtaskIndex > 0 {
		b.SetSubtaskIndex(cfg.Task.SubtaskIndex)
	}
	if len(cfg.IO.TempDirs) > 0 {
		b.SetIOTempDirs(cfg.IO.TempDirs...)
	}

	memorySize := DefaultManagedMemorySize
	if cfg.Memory.Size > 0 {
		memorySize = cfg.Memory.Size
	}
	return b.SetManagedMemorySize(memorySize)
}

func (b *Builder) buildMemoryManager(memorySize int64) core.MemoryManager {
	return memory.NewBuilder().
		SetMemorySize(memorySize).
		SetPageSize(b.memoryPageSize).
		Build()
}

func (b *Builder) SetTaskName(taskName string) *Builder {
	b.taskName = taskName
	return b
}

// SetManagedMemorySize replaces the memory manager with a new one of the
// given capacity. It shares the memory manager field with SetMemoryManager;
// whichever is called last wins.
func (b *Builder) SetManagedMemorySize(managedMemorySize int64) *Builder {
	b.memoryManager = b.buildMemoryManager(managedMemorySize)
	return b
}

func (b *Builder) SetInputSplitProvider(inputSplitProvider core.InputSplitProvider) *Builder {
	b.inputSplitProvider = inputSplitProvider
	return b
}

func (b *Builder) SetBufferSize(bufferSize int) *Builder {
	b.bufferSize = bufferSize
	return b
}

func (b *Builder) SetTaskStateManager(taskStateManager core.TaskStateManager) *Builder {
	b.taskStateManager = taskStateManager
	return b
}

// SetAggregateManager and SetGlobalAggregateManager write the same field.
func (b *Builder) SetAggregateManager(aggregateManager core.GlobalAggregateManager) *Builder {
	b.aggregateManager = aggregateManager
	return b
}

// SetGlobalAggregateManager is an alias of SetAggregateManager.
func (b *Builder) SetGlobalAggregateManager(globalAggregateManager core.GlobalAggregateManager) *Builder {
	return b.SetAggregateManager(globalAggregateManager)
}

func (b *Builder) SetTaskConfiguration(taskConfiguration *core.Configuration) *Builder {
	b.taskConfiguration = taskConfiguration
	return b
}

func (b *Builder) SetExecutionConfig(executionConfig *core.ExecutionConfig) *Builder {
	b.executionConfig = executionConfig
	return b
}

func (b *Builder) SetTaskManagerRuntimeInfo(runtimeInfo core.TaskManagerRuntimeInfo) *Builder {
	b.runtimeInfo = runtimeInfo
	return b
}

func (b *Builder) SetMaxParallelism(maxParallelism int) *Builder {
	b.maxParallelism = maxParallelism
	return b
}

func (b *Builder) SetParallelism(parallelism int) *Builder {
	b.parallelism = parallelism
	return b
}

func (b *Builder) SetSubtaskIndex(subtaskIndex int) *Builder {
	b.subtaskIndex = subtaskIndex
	return b
}

func (b *Builder) SetUserCodeClassLoader(userCodeClassLoader core.UserCodeClassLoader) *Builder {
	b.userCodeClassLoader = userCodeClassLoader
	return b
}

// SetUserCodeFactories wraps factories in a testing class loader.
func (b *Builder) SetUserCodeFactories(factories map[string]core.Factory) *Builder {
	b.userCodeClassLoader = usercode.NewTestingUserCodeClassLoader(factories)
	return b
}

func (b *Builder) SetJobID(jobID core.JobID) *Builder {
	b.jobID = jobID
	return b
}

func (b *Builder) SetJobVertexID(jobVertexID core.JobVertexID) *Builder {
	b.jobVertexID = jobVertexID
	return b
}

func (b *Builder) SetMetricGroup(metricGroup core.TaskMetricGroup) *Builder {
	b.metricGroup = metricGroup
	return b
}

func (b *Builder) SetIOManager(ioManager core.IOManager) *Builder {
	b.ioManager = ioManager
	return b
}

// SetMemoryManager replaces the memory manager. See SetManagedMemorySize.
func (b *Builder) SetMemoryManager(memoryManager core.MemoryManager) *Builder {
	b.memoryManager = memoryManager
	return b
}

func (b *Builder) SetExternalResourceInfoProvider(provider core.ExternalResourceInfoProvider) *Builder {
	b.externalResourceInfoProvider = provider
	return b
}

// SetIOTempDirs sets the parent directories of the default IO manager's
// spill directories. It has no effect when an IO manager is set.
func (b *Builder) SetIOTempDirs(dirs ...string) *Builder {
	b.ioTempDirs = append([]string(nil), dirs...)
	return b
}

// SetLogger sets the logger used while building. It is not part of the Environment.
func (b *Builder) SetLogger(logger logging.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build never fails. When no IO manager was set it creates an
// iomanager.IOManagerAsync; its spill directories appear on first use.
func (b *Builder) Build() *Environment {
	if b.ioManager == nil {
		async := iomanager.NewAsync(
			iomanager.WithTempDirs(b.ioTempDirs...),
			iomanager.WithLogger(b.logger),
		)
		b.logger.Debug("Created default IO manager", "spill_dirs", async.SpillingDirectories())
		b.ioManager = async
	}

	b.logger.Debug("Building mock environment",
		"task_name", b.taskName,
		"job_id", b.jobID.String(),
		"job_vertex_id", b.jobVertexID.String(),
		"subtask_index", b.subtaskIndex,
		"parallelism", b.parallelism,
	)

	return &Environment{
		jobID:                        b.jobID,
		jobVertexID:                  b.jobVertexID,
		taskName:                     b.taskName,
		inputSplitProvider:           b.inputSplitProvider,
		bufferSize:                   b.bufferSize,
		taskConfiguration:            b.taskConfiguration,
		executionConfig:              b.executionConfig,
		ioManager:                    b.ioManager,
		taskStateManager:             b.taskStateManager,
		aggregateManager:             b.aggregateManager,
		maxParallelism:               b.maxParallelism,
		parallelism:                  b.parallelism,
		subtaskIndex:                 b.subtaskIndex,
		userCodeClassLoader:          b.userCodeClassLoader,
		metricGroup:                  b.metricGroup,
		runtimeInfo:                  b.runtimeInfo,
		memoryManager:                b.memoryManager,
		externalResourceInfoProvider: b.externalResourceInfoProvider,
	}
}

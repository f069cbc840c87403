package mockenv

import (
	"fmt"

	"github.com/nemanja-m/taskenv/pkg/core"
)

// Environment is the read-only execution context produced by Builder.Build.
// It holds the collaborators by reference; the Builder keeps no link to it.
type Environment struct {
	jobID                        core.JobID
	jobVertexID                  core.JobVertexID
	taskName                     string
	inputSplitProvider           core.InputSplitProvider
	bufferSize                   int
	taskConfiguration            *core.Configuration
	executionConfig              *core.ExecutionConfig
	ioManager                    core.IOManager
	taskStateManager             core.TaskStateManager
	aggregateManager             core.GlobalAggregateManager
	maxParallelism               int
	parallelism                  int
	subtaskIndex                 int
	userCodeClassLoader          core.UserCodeClassLoader
	metricGroup                  core.TaskMetricGroup
	runtimeInfo                  core.TaskManagerRuntimeInfo
	memoryManager                core.MemoryManager
	externalResourceInfoProvider core.ExternalResourceInfoProvider
}

// TaskInfo describes the subtask an Environment stands in for.
type TaskInfo struct {
	Name             string
	Index            int
	Parallelism      int
	MaxParallelism   int
	NameWithSubtasks string
}

func (e *Environment) TaskInfo() TaskInfo {
	return TaskInfo{
		Name:             e.taskName,
		Index:            e.subtaskIndex,
		Parallelism:      e.parallelism,
		MaxParallelism:   e.maxParallelism,
		NameWithSubtasks: fmt.Sprintf("%s (%d/%d)", e.taskName, e.subtaskIndex+1, e.parallelism),
	}
}

func (e *Environment) JobID() core.JobID             { return e.jobID }
func (e *Environment) JobVertexID() core.JobVertexID { return e.jobVertexID }
func (e *Environment) TaskName() string              { return e.taskName }
func (e *Environment) BufferSize() int               { return e.bufferSize }
func (e *Environment) MaxParallelism() int           { return e.maxParallelism }
func (e *Environment) Parallelism() int              { return e.parallelism }
func (e *Environment) SubtaskIndex() int             { return e.subtaskIndex }

func (e *Environment) InputSplitProvider() core.InputSplitProvider {
	return e.inputSplitProvider
}

func (e *Environment) TaskConfiguration() *core.Configuration {
	return e.taskConfiguration
}

func (e *Environment) ExecutionConfig() *core.ExecutionConfig {
	return e.executionConfig
}

func (e *Environment) IOManager() core.IOManager {
	return e.ioManager
}

func (e *Environment) TaskStateManager() core.TaskStateManager {
	return e.taskStateManager
}

func (e *Environment) GlobalAggregateManager() core.GlobalAggregateManager {
	return e.aggregateManager
}

func (e *Environment) UserCodeClassLoader() core.UserCodeClassLoader {
	return e.userCodeClassLoader
}

func (e *Environment) MetricGroup() core.TaskMetricGroup {
	return e.metricGroup
}

func (e *Environment) TaskManagerInfo() core.TaskManagerRuntimeInfo {
	return e.runtimeInfo
}

func (e *Environment) MemoryManager() core.MemoryManager {
	return e.memoryManager
}

func (e *Environment) ExternalResourceInfoProvider() core.ExternalResourceInfoProvider {
	return e.externalResourceInfoProvider
}

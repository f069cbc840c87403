package core

import (
	"maps"
	"time"
)

const (
	// ParallelismDefault marks parallelism as unset, leaving the choice to the runtime.
	ParallelismDefault = -1

	DefaultAutoWatermarkInterval = 200 * time.Millisecond
)

// ExecutionConfig carries job-wide execution options.
type ExecutionConfig struct {
	Parallelism           int
	MaxParallelism        int
	ObjectReuse           bool
	ClosureCleaner        bool
	AutoWatermarkInterval time.Duration
	RestartAttempts       int
	GlobalJobParameters   map[string]string
}

func NewExecutionConfig() *ExecutionConfig {
	return &ExecutionConfig{
		Parallelism:           ParallelismDefault,
		MaxParallelism:        ParallelismDefault,
		ClosureCleaner:        true,
		AutoWatermarkInterval: DefaultAutoWatermarkInterval,
		GlobalJobParameters:   make(map[string]string),
	}
}

func (c *ExecutionConfig) EnableObjectReuse() *ExecutionConfig {
	c.ObjectReuse = true
	return c
}

func (c *ExecutionConfig) DisableObjectReuse() *ExecutionConfig {
	c.ObjectReuse = false
	return c
}

func (c *ExecutionConfig) SetGlobalJobParameter(key, value string) *ExecutionConfig {
	if c.GlobalJobParameters == nil {
		c.GlobalJobParameters = make(map[string]string)
	}
	c.GlobalJobParameters[key] = value
	return c
}

func (c *ExecutionConfig) Clone() *ExecutionConfig {
	clone := *c
	clone.GlobalJobParameters = maps.Clone(c.GlobalJobParameters)
	return &clone
}

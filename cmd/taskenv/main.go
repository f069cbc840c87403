package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/nemanja-m/taskenv/internal/shared/config"
	"github.com/nemanja-m/taskenv/internal/shared/logging"
	"github.com/nemanja-m/taskenv/pkg/core"
	"github.com/nemanja-m/taskenv/pkg/inputsplit"
	"github.com/nemanja-m/taskenv/pkg/mockenv"
)

type summary struct {
	TaskName         string          `json:"task_name"`
	NameWithSubtasks string          `json:"name_with_subtasks"`
	JobID            string          `json:"job_id"`
	JobVertexID      string          `json:"job_vertex_id"`
	SubtaskIndex     int             `json:"subtask_index"`
	Parallelism      int             `json:"parallelism"`
	MaxParallelism   int             `json:"max_parallelism"`
	BufferSize       int             `json:"buffer_size"`
	ManagedMemory    int64           `json:"managed_memory_bytes"`
	PageSize         int             `json:"page_size"`
	SpillDirectories []string        `json:"spill_directories"`
	NumInputSplits   int             `json:"num_input_splits"`
	TmpDirectories   []string        `json:"tmp_directories"`
	ExternalAddress  string          `json:"external_address"`
	Configuration    json.RawMessage `json:"configuration"`
}

type options struct {
	input      string
	taskConfig string
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	var opts options
	flag.StringVar(&opts.input, "input", "", "optional input files glob pattern, one split per file")
	flag.StringVar(&opts.taskConfig, "task-config", "", "optional JSON object file with task configuration values")
	flag.Parse()

	cfg, err := config.LoadEnvironment(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.NewSlogLoggerTo(os.Stderr, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

	if err := run(os.Stdout, cfg, opts, logger); err != nil {
		logger.Fatal("Failed to build environment", "error", err)
	}
}

func run(w io.Writer, cfg *config.EnvironmentConfig, opts options, logger logging.Logger) error {
	builder := mockenv.NewBuilderFromConfig(cfg).SetLogger(logger)

	if opts.input != "" {
		splits, err := inputsplit.FromGlob(opts.input)
		if err != nil {
			return err
		}
		logger.Info("Loaded input splits", "pattern", opts.input, "num_splits", splits.Remaining())
		builder.SetInputSplitProvider(splits)
	}
	if opts.taskConfig != "" {
		taskConfig, err := loadTaskConfiguration(opts.taskConfig)
		if err != nil {
			return err
		}
		logger.Info("Loaded task configuration", "path", opts.taskConfig, "num_keys", taskConfig.Len())
		builder.SetTaskConfiguration(taskConfig)
	}

	env := builder.Build()
	defer func() {
		if err := env.IOManager().Close(); err != nil {
			logger.Error("Failed to close IO manager", "error", err)
		}
		env.MemoryManager().Shutdown()
	}()

	info := env.TaskInfo()
	logger.Info("Environment built",
		"task", info.NameWithSubtasks,
		"job_id", env.JobID().String(),
		"managed_memory_bytes", env.MemoryManager().MemorySize(),
	)

	out := summary{
		TaskName:         info.Name,
		NameWithSubtasks: info.NameWithSubtasks,
		JobID:            env.JobID().String(),
		JobVertexID:      env.JobVertexID().String(),
		SubtaskIndex:     info.Index,
		Parallelism:      info.Parallelism,
		MaxParallelism:   info.MaxParallelism,
		BufferSize:       env.BufferSize(),
		ManagedMemory:    env.MemoryManager().MemorySize(),
		PageSize:         env.MemoryManager().PageSize(),
		SpillDirectories: env.IOManager().SpillingDirectories(),
		TmpDirectories:   env.TaskManagerInfo().TmpDirectories(),
		ExternalAddress:  env.TaskManagerInfo().TaskManagerExternalAddress(),
	}
	configuration, err := protojson.Marshal(env.TaskConfiguration().ToProto())
	if err != nil {
		return fmt.Errorf("failed to encode task configuration: %w", err)
	}
	out.Configuration = configuration
	if splits, ok := env.InputSplitProvider().(*inputsplit.MockInputSplitProvider); ok {
		out.NumInputSplits = splits.Remaining()
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// loadTaskConfiguration reads a flat JSON object of string, number or bool values.
func loadTaskConfiguration(path string) (*core.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task configuration: %w", err)
	}
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid task configuration %s: %w", path, err)
	}
	return core.ConfigurationFromProto(&s)
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvironmentConfig contains the defaults used to seed an environment builder.
type EnvironmentConfig struct {
	Task    TaskConfig    `mapstructure:"task"`
	Memory  MemoryConfig  `mapstructure:"memory"`
	IO      IOConfig      `mapstructure:"io"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TaskConfig contains task identity defaults.
type TaskConfig struct {
	Name           string `mapstructure:"name"`
	BufferSize     int    `mapstructure:"buffer_size"`
	Parallelism    int    `mapstructure:"parallelism"`
	MaxParallelism int    `mapstructure:"max_parallelism"`
	SubtaskIndex   int    `mapstructure:"subtask_index"`
}

// MemoryConfig contains managed memory configuration.
type MemoryConfig struct {
	Size     int64 `mapstructure:"size"`
	PageSize int   `mapstructure:"page_size"`
}

// IOConfig contains I/O manager configuration.
type IOConfig struct {
	TempDirs []string `mapstructure:"temp_dirs"`
}

// LoadEnvironment loads the environment configuration from the given path.
// If configPath is empty, it looks for taskenv.yaml in the config/ directory.
// Environment variables with TASKENV_ prefix override config file values.
func LoadEnvironment(configPath string) (*EnvironmentConfig, error) {
	v := viper.New()
	setEnvironmentDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("taskenv")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TASKENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg EnvironmentConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// DefaultEnvironment returns the configuration LoadEnvironment produces when
// no file or environment overrides are present.
func DefaultEnvironment() *EnvironmentConfig {
	return &EnvironmentConfig{
		Task: TaskConfig{
			Name:           "mock-task",
			BufferSize:     16,
			Parallelism:    1,
			MaxParallelism: 1,
			SubtaskIndex:   0,
		},
		Memory: MemoryConfig{
			Size:     32 * 1024 * 1024,
			PageSize: 32 * 1024,
		},
		IO: IOConfig{
			TempDirs: []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func setEnvironmentDefaults(v *viper.Viper) {
	d := DefaultEnvironment()
	v.SetDefault("task.name", d.Task.Name)
	v.SetDefault("task.buffer_size", d.Task.BufferSize)
	v.SetDefault("task.parallelism", d.Task.Parallelism)
	v.SetDefault("task.max_parallelism", d.Task.MaxParallelism)
	v.SetDefault("task.subtask_index", d.Task.SubtaskIndex)
	v.SetDefault("memory.size", d.Memory.Size)
	v.SetDefault("memory.page_size", d.Memory.PageSize)
	v.SetDefault("io.temp_dirs", d.IO.TempDirs)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

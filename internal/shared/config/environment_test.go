package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvironment_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadEnvironment("")
	require.NoError(t, err)

	if diff := cmp.Diff(DefaultEnvironment(), cfg, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("LoadEnvironment() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvironment_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskenv.yaml")
	content := `
task:
  name: source
  parallelism: 4
  subtask_index: 2
memory:
  size: 1048576
io:
  temp_dirs: ["/tmp/a", "/tmp/b"]
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadEnvironment(path)
	require.NoError(t, err)

	require.Equal(t, "source", cfg.Task.Name)
	require.Equal(t, 4, cfg.Task.Parallelism)
	require.Equal(t, 2, cfg.Task.SubtaskIndex)
	require.Equal(t, 16, cfg.Task.BufferSize)
	require.Equal(t, 1, cfg.Task.MaxParallelism)
	require.Equal(t, int64(1048576), cfg.Memory.Size)
	require.Equal(t, 32*1024, cfg.Memory.PageSize)
	require.Equal(t, []string{"/tmp/a", "/tmp/b"}, cfg.IO.TempDirs)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadEnvironment_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TASKENV_TASK_NAME", "from-env")
	t.Setenv("TASKENV_TASK_PARALLELISM", "8")
	t.Setenv("TASKENV_MEMORY_SIZE", "2097152")

	cfg, err := LoadEnvironment("")
	require.NoError(t, err)

	require.Equal(t, "from-env", cfg.Task.Name)
	require.Equal(t, 8, cfg.Task.Parallelism)
	require.Equal(t, int64(2097152), cfg.Memory.Size)
}

func TestLoadEnvironment_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("task: [unclosed"), 0o644))

	_, err := LoadEnvironment(path)
	require.Error(t, err)
}

package runtimeinfo

import (
	"os"

	"github.com/nemanja-m/taskenv/pkg/core"
)

const DefaultExternalAddress = "localhost"

var _ core.TaskManagerRuntimeInfo = (*TestingTaskManagerRuntimeInfo)(nil)

type TestingTaskManagerRuntimeInfo struct {
	configuration   *core.Configuration
	tmpDirs         []string
	exitOnFatal     bool
	externalAddress string
	bindAddress     string
}

type Option func(*TestingTaskManagerRuntimeInfo)

func WithConfiguration(cfg *core.Configuration) Option {
	return func(i *TestingTaskManagerRuntimeInfo) {
		if cfg != nil {
			i.configuration = cfg
		}
	}
}

func WithTmpDirectories(dirs ...string) Option {
	return func(i *TestingTaskManagerRuntimeInfo) {
		if len(dirs) > 0 {
			i.tmpDirs = append([]string(nil), dirs...)
		}
	}
}

func WithExitOnFatalError(exit bool) Option {
	return func(i *TestingTaskManagerRuntimeInfo) {
		i.exitOnFatal = exit
	}
}

func WithExternalAddress(addr string) Option {
	return func(i *TestingTaskManagerRuntimeInfo) {
		i.externalAddress = addr
	}
}

func WithBindAddress(addr string) Option {
	return func(i *TestingTaskManagerRuntimeInfo) {
		i.bindAddress = addr
	}
}

// NewTestingTaskManagerRuntimeInfo defaults to an empty configuration, the
// OS temp directory and localhost for both addresses.
func NewTestingTaskManagerRuntimeInfo(opts ...Option) *TestingTaskManagerRuntimeInfo {
	info := &TestingTaskManagerRuntimeInfo{
		configuration:   core.NewConfiguration(),
		tmpDirs:         []string{os.TempDir()},
		externalAddress: DefaultExternalAddress,
		bindAddress:     DefaultExternalAddress,
	}
	for _, opt := range opts {
		opt(info)
	}
	return info
}

func (i *TestingTaskManagerRuntimeInfo) Configuration() *core.Configuration {
	return i.configuration
}

func (i *TestingTaskManagerRuntimeInfo) TmpDirectories() []string {
	return append([]string(nil), i.tmpDirs...)
}

func (i *TestingTaskManagerRuntimeInfo) ShouldExitOnFatalError() bool {
	return i.exitOnFatal
}

func (i *TestingTaskManagerRuntimeInfo) TaskManagerExternalAddress() string {
	return i.externalAddress
}

func (i *TestingTaskManagerRuntimeInfo) TaskManagerBindAddress() string {
	return i.bindAddress
}

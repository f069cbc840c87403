package iomanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/nemanja-m/taskenv/internal/shared/logging"
	"github.com/nemanja-m/taskenv/pkg/core"
)

const (
	spillDirPrefix   = "taskenv-io-"
	channelExtension = ".channel"
)

var (
	ErrClosed         = errors.New("IO manager is closed")
	ErrUnknownChannel = errors.New("unknown channel")
)

var _ core.IOManager = (*IOManagerAsync)(nil)

type Option func(*IOManagerAsync)

// WithTempDirs sets the parent directories under which spill directories are created.
func WithTempDirs(dirs ...string) Option {
	return func(m *IOManagerAsync) {
		if len(dirs) > 0 {
			m.tempDirs = append([]string(nil), dirs...)
		}
	}
}

func WithLogger(logger logging.Logger) Option {
	return func(m *IOManagerAsync) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// IOManagerAsync spills blocks to channel files. Spill directories, one per
// temp dir, and their single-worker write queues are created on the first
// CreateChannel, so an unused manager holds no goroutines. Writes to a
// channel keep their order.
type IOManagerAsync struct {
	tempDirs  []string
	spillDirs []string
	queues    []*pool
	logger    logging.Logger

	mu       sync.RWMutex
	created  bool
	next     int
	channels map[core.ChannelID]channel
	closed   bool
}

type channel struct {
	path  string
	queue *pool
}

func NewAsync(opts ...Option) *IOManagerAsync {
	m := &IOManagerAsync{
		tempDirs: []string{os.TempDir()},
		logger:   logging.NewNopLogger(),
		channels: make(map[core.ChannelID]channel),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.spillDirs = make([]string, len(m.tempDirs))
	for i, dir := range m.tempDirs {
		m.spillDirs[i] = filepath.Join(dir, spillDirPrefix+uuid.NewString())
	}
	return m
}

// SpillingDirectories returns the spill directories. They may not exist yet.
func (m *IOManagerAsync) SpillingDirectories() []string {
	return append([]string(nil), m.spillDirs...)
}

func (m *IOManagerAsync) CreateChannel() (core.ChannelID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return core.ChannelID{}, ErrClosed
	}
	if err := m.ensureSpillDirs(); err != nil {
		return core.ChannelID{}, err
	}

	id := core.NewChannelID()
	idx := m.next % len(m.spillDirs)
	m.next++
	m.channels[id] = channel{
		path:  filepath.Join(m.spillDirs[idx], id.String()+channelExtension),
		queue: m.queues[idx],
	}
	return id, nil
}

// ensureSpillDirs must be called with mu held.
func (m *IOManagerAsync) ensureSpillDirs() error {
	if m.created {
		return nil
	}
	for _, dir := range m.spillDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create spill directory %s: %w", dir, err)
		}
	}
	m.queues = make([]*pool, len(m.spillDirs))
	for i := range m.queues {
		m.queues[i] = newPool(1)
		m.queues[i].start()
	}
	m.created = true
	m.logger.Debug("Created spill directories", "dirs", m.spillDirs)
	return nil
}

// ChannelPath returns the file backing the channel.
func (m *IOManagerAsync) ChannelPath(id core.ChannelID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	return ch.path, nil
}

func (m *IOManagerAsync) CreateWriter(id core.ChannelID) (core.BlockWriter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	ch, ok := m.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	file, err := os.Create(ch.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel %s for writing: %w", id, err)
	}
	return &asyncBlockWriter{id: id, file: file, queue: ch.queue, manager: m}, nil
}

func (m *IOManagerAsync) CreateReader(id core.ChannelID) (core.BlockReader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	ch, ok := m.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	reader, err := openBlockReader(id, ch.path)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

func (m *IOManagerAsync) DeleteChannel(id core.ChannelID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	delete(m.channels, id)
	if err := os.Remove(ch.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete channel %s: %w", id, err)
	}
	return nil
}

func (m *IOManagerAsync) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Close waits for queued writes, then removes all spill directories.
// Calling Close more than once is a no-op.
func (m *IOManagerAsync) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for _, q := range m.queues {
		q.close()
	}

	if !m.created {
		return nil
	}

	var errs []error
	for _, dir := range m.spillDirs {
		leftover, err := doublestar.Glob(os.DirFS(dir), "**/*"+channelExtension)
		if err != nil {
			errs = append(errs, err)
		} else if len(leftover) > 0 {
			m.logger.Debug("Removing leftover channel files", "dir", dir, "count", len(leftover))
		}
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove spill directory %s: %w", dir, err))
		}
	}
	clear(m.channels)
	return errors.Join(errs...)
}

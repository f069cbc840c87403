package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/nemanja-m/taskenv/pkg/core"
)

const (
	DefaultMemorySize int64 = 32 * 1024 * 1024 // 32MiB
	DefaultPageSize         = 32 * 1024        // 32KiB
	MinPageSize             = 4 * 1024
)

var (
	ErrInsufficientMemory = errors.New("insufficient managed memory")
	ErrShutdown           = errors.New("memory manager is shut down")
	ErrNilOwner           = errors.New("memory owner must not be nil")
)

var _ core.MemoryManager = (*Manager)(nil)

// Manager hands out fixed-size pages and byte reservations from a single
// memory budget. Pages and reservations are tracked per owner.
type Manager struct {
	memorySize int64
	pageSize   int

	budget *semaphore.Weighted

	mu        sync.Mutex
	used      int64
	pages     map[any][][]byte
	reserved  map[any]int64
	isStopped bool
}

func newManager(memorySize int64, pageSize int) *Manager {
	return &Manager{
		memorySize: memorySize,
		pageSize:   pageSize,
		budget:     semaphore.NewWeighted(memorySize),
		pages:      make(map[any][][]byte),
		reserved:   make(map[any]int64),
	}
}

func (m *Manager) MemorySize() int64 {
	return m.memorySize
}

func (m *Manager) AvailableMemory() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.memorySize - m.used
}

func (m *Manager) PageSize() int {
	return m.pageSize
}

// AvailablePages returns the number of whole pages that can still be allocated.
func (m *Manager) AvailablePages() int {
	return int(m.AvailableMemory() / int64(m.pageSize))
}

func (m *Manager) Allocate(owner any, numPages int) ([][]byte, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	if numPages < 0 {
		return nil, fmt.Errorf("invalid number of pages: %d", numPages)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isStopped {
		return nil, ErrShutdown
	}

	if int64(numPages) > m.memorySize/int64(m.pageSize) {
		return nil, fmt.Errorf("%w: requested %d pages, capacity %d pages",
			ErrInsufficientMemory, numPages, m.memorySize/int64(m.pageSize))
	}
	size := int64(numPages) * int64(m.pageSize)
	if !m.budget.TryAcquire(size) {
		return nil, fmt.Errorf("%w: requested %d pages (%d bytes), available %d bytes",
			ErrInsufficientMemory, numPages, size, m.memorySize-m.used)
	}
	m.used += size

	segments := make([][]byte, numPages)
	for i := range segments {
		segments[i] = make([]byte, m.pageSize)
	}
	m.pages[owner] = append(m.pages[owner], segments...)
	return segments, nil
}

// Release returns every page held by owner.
func (m *Manager) Release(owner any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	segments, ok := m.pages[owner]
	if !ok {
		return
	}
	delete(m.pages, owner)
	m.free(int64(len(segments)) * int64(m.pageSize))
}

func (m *Manager) ReserveMemory(owner any, size int64) error {
	if owner == nil {
		return ErrNilOwner
	}
	if size < 0 {
		return fmt.Errorf("invalid memory size: %d", size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isStopped {
		return ErrShutdown
	}
	if !m.budget.TryAcquire(size) {
		return fmt.Errorf("%w: requested %d bytes, available %d bytes",
			ErrInsufficientMemory, size, m.memorySize-m.used)
	}
	m.used += size
	m.reserved[owner] += size
	return nil
}

// ReleaseMemory releases up to size reserved bytes of owner.
func (m *Manager) ReleaseMemory(owner any, size int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	held, ok := m.reserved[owner]
	if !ok || size <= 0 {
		return
	}
	size = min(size, held)
	if held == size {
		delete(m.reserved, owner)
	} else {
		m.reserved[owner] = held - size
	}
	m.free(size)
}

// WaitForMemory blocks until size bytes can be reserved for owner or ctx is done.
func (m *Manager) WaitForMemory(ctx context.Context, owner any, size int64) error {
	if owner == nil {
		return ErrNilOwner
	}
	if size < 0 {
		return fmt.Errorf("invalid memory size: %d", size)
	}
	if size > m.memorySize {
		return fmt.Errorf("%w: requested %d bytes exceeds capacity %d", ErrInsufficientMemory, size, m.memorySize)
	}
	if err := m.budget.Acquire(ctx, size); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isStopped {
		m.budget.Release(size)
		return ErrShutdown
	}
	m.used += size
	m.reserved[owner] += size
	return nil
}

func (m *Manager) VerifyEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used == 0
}

func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isStopped {
		return
	}
	m.isStopped = true
	m.free(m.used)
	clear(m.pages)
	clear(m.reserved)
}

func (m *Manager) IsShutdown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isStopped
}

// free must be called with mu held.
func (m *Manager) free(size int64) {
	if size == 0 {
		return
	}
	m.used -= size
	m.budget.Release(size)
}

package memory

// Builder configures a Manager. A negative memory size is treated as zero and
// page sizes below MinPageSize fall back to DefaultPageSize.
type Builder struct {
	memorySize int64
	pageSize   int
}

func NewBuilder() *Builder {
	return &Builder{
		memorySize: DefaultMemorySize,
		pageSize:   DefaultPageSize,
	}
}

func (b *Builder) SetMemorySize(memorySize int64) *Builder {
	b.memorySize = memorySize
	return b
}

func (b *Builder) SetPageSize(pageSize int) *Builder {
	b.pageSize = pageSize
	return b
}

func (b *Builder) Build() *Manager {
	memorySize := b.memorySize
	if memorySize < 0 {
		memorySize = 0
	}
	pageSize := b.pageSize
	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	return newManager(memorySize, pageSize)
}

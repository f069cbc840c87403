package inputsplit

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/taskenv/pkg/core"
)

var _ core.InputSplitProvider = (*MockInputSplitProvider)(nil)

// GenericInputSplit is split Number out of Total, carrying no data.
type GenericInputSplit struct {
	Number int
	Total  int
}

func (s GenericInputSplit) SplitNumber() int {
	return s.Number
}

// FileInputSplit is a byte range of a file.
type FileInputSplit struct {
	Number int
	Path   string
	Start  int64
	Length int64
}

func (s FileInputSplit) SplitNumber() int {
	return s.Number
}

// MockInputSplitProvider hands out splits in the order they were added.
type MockInputSplitProvider struct {
	mu     sync.Mutex
	splits []core.InputSplit
	next   int
}

func NewMockInputSplitProvider(splits ...core.InputSplit) *MockInputSplitProvider {
	return &MockInputSplitProvider{splits: slices.Clone(splits)}
}

func (p *MockInputSplitProvider) AddSplits(splits ...core.InputSplit) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.splits = append(p.splits, splits...)
}

// AddFileSplits divides the file at path into numSplits byte ranges.
func (p *MockInputSplitProvider) AddFileSplits(path string, numSplits int) error {
	splits, err := FileSplits(path, numSplits)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, split := range splits {
		split.Number = len(p.splits)
		p.splits = append(p.splits, split)
	}
	return nil
}

// NextInputSplit returns nil, nil after the last split.
func (p *MockInputSplitProvider) NextInputSplit(ctx context.Context, _ core.UserCodeClassLoader) (core.InputSplit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next >= len(p.splits) {
		return nil, nil
	}
	split := p.splits[p.next]
	p.next++
	return split, nil
}

func (p *MockInputSplitProvider) Remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.splits) - p.next
}

// FromGlob creates a provider with one split per regular file matched by the
// patterns. Files are sorted by path.
func FromGlob(patterns ...string) (*MockInputSplitProvider, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid input pattern %q: %w", pattern, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	files = slices.Compact(files)

	p := NewMockInputSplitProvider()
	for _, name := range files {
		info, err := os.Lstat(name)
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		p.splits = append(p.splits, FileInputSplit{
			Number: len(p.splits),
			Path:   name,
			Length: info.Size(),
		})
	}
	return p, nil
}

// FileSplits divides a file into numSplits contiguous ranges. The last split
// absorbs the remainder.
func FileSplits(path string, numSplits int) ([]FileInputSplit, error) {
	if numSplits <= 0 {
		return nil, fmt.Errorf("invalid number of splits: %d", numSplits)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	size := info.Size()
	chunk := size / int64(numSplits)
	splits := make([]FileInputSplit, numSplits)
	for i := range splits {
		start := int64(i) * chunk
		length := chunk
		if i == numSplits-1 {
			length = size - start
		}
		splits[i] = FileInputSplit{Number: i, Path: path, Start: start, Length: length}
	}
	return splits, nil
}

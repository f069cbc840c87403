package inputsplit

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

const (
	DefaultMaxLineSize = 1024 * 1024 // 1MB

	countBufferSize = 32 * 1024
)

// LineReader reads the lines owned by a FileInputSplit. A line belongs to the
// split holding its first byte: a split not starting at 0 skips its leading
// partial line, and the last line of a split is read past the split end.
type LineReader struct {
	file    *os.File
	scanner *bufio.Scanner
	pos     int64
	end     int64
	advance int
	number  int
}

// OpenLines opens the split for line reading. Lines longer than maxLineSize
// fail with bufio.ErrTooLong; a non-positive maxLineSize means DefaultMaxLineSize.
func (s FileInputSplit) OpenLines(maxLineSize int) (*LineReader, error) {
	if maxLineSize <= 0 {
		maxLineSize = DefaultMaxLineSize
	}

	file, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}

	offset := max(s.Start-1, 0)
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		file.Close()
		return nil, err
	}

	r := &LineReader{file: file, pos: offset, end: s.Start + s.Length}
	r.scanner = bufio.NewScanner(file)
	r.scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)
	r.scanner.Split(r.scanLines)

	if s.Start > 0 {
		// Skip through the first newline at or after Start-1.
		if r.scanner.Scan() {
			r.pos += int64(r.advance)
		} else if err := r.scanner.Err(); err != nil {
			file.Close()
			return nil, err
		}

		if r.pos < r.end {
			lines, err := countNewlines(file, r.pos)
			if err != nil {
				file.Close()
				return nil, err
			}
			r.number = lines
		}
	}
	return r, nil
}

func (r *LineReader) scanLines(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	r.advance = advance
	return advance, token, err
}

// Scan advances to the next line of the split.
func (r *LineReader) Scan() bool {
	if r.pos >= r.end {
		return false
	}
	if !r.scanner.Scan() {
		return false
	}
	r.pos += int64(r.advance)
	r.number++
	return true
}

// Text returns the current line without its line terminator.
func (r *LineReader) Text() string {
	return r.scanner.Text()
}

// Number returns the 1-based line number of the current line within the file.
func (r *LineReader) Number() int {
	return r.number
}

func (r *LineReader) Err() error {
	return r.scanner.Err()
}

func (r *LineReader) Close() error {
	return r.file.Close()
}

func countNewlines(r io.ReaderAt, n int64) (int, error) {
	section := io.NewSectionReader(r, 0, n)
	buf := make([]byte, countBufferSize)
	count := 0
	for {
		k, err := section.Read(buf)
		count += bytes.Count(buf[:k], []byte{'\n'})
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
	}
}

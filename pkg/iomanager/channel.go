package iomanager

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/nemanja-m/taskenv/pkg/core"
)

const blockHeaderSize = 4

// asyncBlockWriter writes length-prefixed blocks on the channel's directory queue.
type asyncBlockWriter struct {
	id      core.ChannelID
	file    *os.File
	queue   *pool
	manager *IOManagerAsync

	pending sync.WaitGroup

	mu     sync.Mutex
	err    error
	closed bool
}

func (w *asyncBlockWriter) ChannelID() core.ChannelID {
	return w.id
}

// WriteBlock queues a copy of block. Failures of earlier writes are returned
// here or from Close.
func (w *asyncBlockWriter) WriteBlock(block []byte) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return fmt.Errorf("writer for channel %s is closed", w.id)
	}
	if w.err != nil {
		err := w.err
		w.mu.Unlock()
		return err
	}
	w.mu.Unlock()

	w.manager.mu.RLock()
	defer w.manager.mu.RUnlock()
	if w.manager.closed {
		return ErrClosed
	}

	data := append([]byte(nil), block...)
	w.pending.Add(1)
	w.queue.submit(func() {
		defer w.pending.Done()
		if err := writeBlock(w.file, data); err != nil {
			w.setErr(fmt.Errorf("failed to write block to channel %s: %w", w.id, err))
		}
	})
	return nil
}

func (w *asyncBlockWriter) setErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// Close waits for all queued blocks and closes the file.
func (w *asyncBlockWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.pending.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	return errors.Join(w.err, w.file.Close())
}

func writeBlock(w io.Writer, block []byte) error {
	var header [blockHeaderSize]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(block)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(block)
	return err
}

type blockReader struct {
	id   core.ChannelID
	file *os.File
	r    *bufio.Reader
}

func openBlockReader(id core.ChannelID, path string) (*blockReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open channel %s for reading: %w", id, err)
	}
	return &blockReader{id: id, file: file, r: bufio.NewReader(file)}, nil
}

func (r *blockReader) ChannelID() core.ChannelID {
	return r.id
}

// ReadBlock returns io.EOF after the last block and io.ErrUnexpectedEOF for a
// truncated block.
func (r *blockReader) ReadBlock() ([]byte, error) {
	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		return nil, err
	}
	block := make([]byte, binary.BigEndian.Uint32(header[:]))
	if _, err := io.ReadFull(r.r, block); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return block, nil
}

func (r *blockReader) Close() error {
	return r.file.Close()
}

// Package parallel partitions the input across workers and merges their
// partial tables. Correctness relies on the merge operation being
// commutative and associative, so no ordering between partitions is
// needed.
package parallel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
)

// Chunker splits a stream into newline-aligned chunks delivered over a
// channel. Buffers are recycled through a pool; consumers must Release
// every chunk they take. A partial line at a chunk boundary is carried
// into the next chunk, so no line is ever split across chunks.
type Chunker struct {
	r         io.Reader
	pool      sync.Pool
	chunkCh   chan *[]byte
	chunkSize int
}

func NewChunker(r io.Reader, channelCap, chunkSize int) *Chunker {
	return &Chunker{
		r:         r,
		chunkCh:   make(chan *[]byte, channelCap),
		chunkSize: chunkSize,
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, 0, chunkSize)
				return &b
			},
		},
	}
}

func (c *Chunker) getChunk() *[]byte {
	b := c.pool.Get().(*[]byte)
	*b = (*b)[:0]
	return b
}

// Release returns a consumed chunk to the pool.
func (c *Chunker) Release(chunk *[]byte) {
	c.pool.Put(chunk)
}

// Next blocks for the next chunk; nil means the stream is done.
func (c *Chunker) Next() *[]byte {
	return <-c.chunkCh
}

// Run reads the stream to EOF, emitting newline-terminated chunks. The
// channel is closed on every exit path so consumers always drain. A final
// line without a trailing newline gets one appended. Cancellation is
// honored whenever a send would block.
func (c *Chunker) Run(ctx context.Context) error {
	defer close(c.chunkCh)

	leftovers := make([]byte, 0, 256)
	for {
		chunk := c.getChunk()
		*chunk = append(*chunk, leftovers...)
		readStart := len(leftovers)
		leftovers = leftovers[:0]
		if cap(*chunk) == readStart {
			// a carried line already fills the buffer, make read room
			*chunk = slices.Grow(*chunk, c.chunkSize)
		}
		*chunk = (*chunk)[:cap(*chunk)]

		n, err := c.r.Read((*chunk)[readStart:])
		*chunk = (*chunk)[:readStart+n]

		if err == io.EOF {
			if len(*chunk) > 0 {
				if (*chunk)[len(*chunk)-1] != '\n' {
					*chunk = append(*chunk, '\n')
				}
				return c.send(ctx, chunk)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read chunk: %w", err)
		}

		lastnl := bytes.LastIndexByte(*chunk, '\n')
		if lastnl == -1 {
			// no full line yet, keep accumulating
			leftovers = append(leftovers, (*chunk)...)
			c.Release(chunk)
			continue
		}

		if lastnl < len(*chunk)-1 {
			leftovers = append(leftovers, (*chunk)[lastnl+1:]...)
		}
		*chunk = (*chunk)[:lastnl+1]
		if err := c.send(ctx, chunk); err != nil {
			return err
		}
	}
}

func (c *Chunker) send(ctx context.Context, chunk *[]byte) error {
	select {
	case c.chunkCh <- chunk:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("chunker canceled: %w", ctx.Err())
	}
}

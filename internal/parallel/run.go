package parallel

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"stationstats/internal/source"
	"stationstats/internal/stats"
)

const (
	defaultChunkSize  = 256 * 1024
	defaultChannelCap = 256
	defaultBuckets    = 1 << 14
)

// Options tune a parallel run. The zero value picks sane defaults.
type Options struct {
	// Workers is the number of parsing goroutines. Defaults to GOMAXPROCS.
	Workers int
	// ChunkSize is the target chunk length in bytes.
	ChunkSize int
	// ChannelCap bounds the number of chunks in flight.
	ChannelCap int
	// Buckets is the per-worker hash table size, a power of two.
	Buckets uint64
	// Sink receives malformed rows from all workers concurrently.
	Sink stats.ErrorSink
}

func (o *Options) setDefaults() {
	if o.Workers < 1 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.ChannelCap <= 0 {
		o.ChannelCap = defaultChannelCap
	}
	if o.Buckets == 0 {
		o.Buckets = defaultBuckets
	}
	if o.Sink == nil {
		o.Sink = stats.NewSlogSink(slog.Default())
	}
}

// Run aggregates r with a chunking pipeline: one goroutine slices the
// stream into newline-aligned chunks, Workers goroutines parse them into
// per-worker hash tables, and the partial tables merge into one report.
// The report matches the sequential engine's for the same input, modulo
// floating-point summation order.
func Run(ctx context.Context, r io.Reader, opts Options) (stats.Report, error) {
	opts.setDefaults()

	hashTables := make([]*stats.HashTable, opts.Workers)
	for i := range hashTables {
		ht, err := stats.NewHashTable(opts.Buckets)
		if err != nil {
			return nil, err
		}
		hashTables[i] = ht
	}

	chunker := NewChunker(r, opts.ChannelCap, opts.ChunkSize)

	var chunkErr error
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		chunkErr = chunker.Run(ctx)
		slog.Debug("chunker done")
	}()

	wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			drainChunks(chunker, hashTables[i], opts.Sink)
			slog.Debug("worker done", "id", i)
		}()
	}
	wg.Wait()

	if chunkErr != nil {
		return nil, chunkErr
	}

	merged := stats.NewTable()
	for _, ht := range hashTables {
		ht.Drain(merged)
	}
	return stats.Finalize(merged), nil
}

// drainChunks consumes chunks until the channel closes, folding each line
// into the worker-local table. Chunks always end on '\n' but the loop
// tolerates a missing one on the last line.
func drainChunks(chunker *Chunker, ht *stats.HashTable, sink stats.ErrorSink) {
	for {
		chunkPtr := chunker.Next()
		if chunkPtr == nil {
			return
		}

		chunk := *chunkPtr
		for start := 0; start < len(chunk); {
			var line []byte
			if nl := bytes.IndexByte(chunk[start:], '\n'); nl >= 0 {
				line = chunk[start : start+nl]
				start += nl + 1
			} else {
				line = chunk[start:]
				start = len(chunk)
			}
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}

			row, err := stats.ParseRow(line)
			if err != nil {
				sink.Record(line, err)
				continue
			}
			ht.Update(row.Key, row.Value)
		}

		chunker.Release(chunkPtr)
	}
}

// RunFile aggregates a plain file by mapping it into memory and running
// one sequential engine per newline-aligned section. Sections share the
// sink; each engine owns its table. The mapping is released before
// returning.
func RunFile(ctx context.Context, path string, opts Options) (stats.Report, error) {
	opts.setDefaults()

	sections, closer, err := source.SectionReaders(path, opts.Workers)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	engines := make([]*stats.Engine, len(sections))
	errs := make([]error, len(sections))
	wg := sync.WaitGroup{}
	wg.Add(len(sections))
	for i, sec := range sections {
		i, sec := i, sec
		go func() {
			defer wg.Done()
			engines[i] = stats.NewEngine(stats.WithErrorSink(opts.Sink))
			errs[i] = engines[i].Process(ctx, sec)
			slog.Debug("section done", "id", i)
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	merged := stats.NewTable()
	for _, eng := range engines {
		merged.Merge(eng.Table())
	}
	return stats.Finalize(merged), nil
}

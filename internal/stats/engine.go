package stats

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
)

const (
	defaultMaxLineBytes = 1 << 20

	// Cancellation is polled at line boundaries, once per batch.
	ctxCheckRows = 4096
)

// Engine drives the sequential run: it reads lines, parses them, folds
// valid rows into its table and routes malformed rows to the sink. One
// line is fully aggregated before the next is read, so memory stays
// bounded by distinct-key cardinality. An Engine is single-use and not
// safe for concurrent calls; parallel runs keep one per worker.
type Engine struct {
	table *Table
	sink  ErrorSink

	maxLineBytes  int
	progressEvery int64
	progressFn    func(rows int64)

	rows int64
}

type Option func(*Engine)

// WithErrorSink replaces the default slog-backed sink.
func WithErrorSink(s ErrorSink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithProgress invokes fn with the running row count every `every` rows.
// The callback runs on the engine goroutine and should be cheap.
func WithProgress(every int64, fn func(rows int64)) Option {
	return func(e *Engine) {
		e.progressEvery = every
		e.progressFn = fn
	}
}

// WithMaxLineBytes caps the length of a single input line. A longer line
// is a fatal read failure, not a parse failure.
func WithMaxLineBytes(n int) Option {
	return func(e *Engine) { e.maxLineBytes = n }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table:        NewTable(),
		sink:         NewSlogSink(slog.Default()),
		maxLineBytes: defaultMaxLineBytes,
	}
	for _, o := range opts {
		if o != nil {
			o(e)
		}
	}
	return e
}

// Process consumes r to end of stream, accumulating into the engine's
// table without finalizing. Malformed rows go to the sink and never abort
// the run; read errors and cancellation do, with no partial result
// exposed. A final line without a trailing newline is still processed.
func (e *Engine) Process(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), e.maxLineBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}

		row, err := ParseRow(line)
		if err != nil {
			e.sink.Record(line, err)
		} else {
			e.table.Update(row.Key, row.Value)
		}

		e.rows++
		if e.progressFn != nil && e.rows%e.progressEvery == 0 {
			e.progressFn(e.rows)
		}
		if e.rows%ctxCheckRows == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("aggregation canceled: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// Run is Process followed by Finalize. An input where every row is
// malformed yields an empty Report and a nil error.
func (e *Engine) Run(ctx context.Context, r io.Reader) (Report, error) {
	if err := e.Process(ctx, r); err != nil {
		return nil, err
	}
	return Finalize(e.table), nil
}

// Table exposes the accumulated state, for merging partial runs.
func (e *Engine) Table() *Table {
	return e.table
}

// Rows returns the number of lines consumed so far, valid and malformed.
func (e *Engine) Rows() int64 {
	return e.rows
}

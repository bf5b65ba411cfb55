// Package source opens measurement inputs: plain files, transparently
// decompressed files selected by extension, and mmap-backed section
// readers for parallel scans.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"
)

// stream pairs a decoding reader with the cleanup for it and the
// underlying file.
type stream struct {
	io.Reader
	close func() error
}

func (s *stream) Close() error { return s.close() }

// Open opens path for reading, decompressing by extension: .gz, .zst,
// .lz4 and .s2 are decoded, anything else is read as plain bytes. A
// missing file stays matchable with errors.Is(err, fs.ErrNotExist).
// Corrupt compressed data surfaces later as a read error.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	switch filepath.Ext(path) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader for %s: %w", path, err)
		}
		return &stream{Reader: zr, close: func() error {
			err := zr.Close()
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			return err
		}}, nil
	case ".zst":
		return newZstdStream(f)
	case ".lz4":
		return &stream{Reader: lz4.NewReader(f), close: f.Close}, nil
	case ".s2":
		return &stream{Reader: s2.NewReader(f), close: f.Close}, nil
	default:
		return f, nil
	}
}

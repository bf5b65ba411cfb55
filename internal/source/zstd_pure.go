//go:build !cgo

package source

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Pure Go zstd path for builds without cgo.
func newZstdStream(f *os.File) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd reader for %s: %w", f.Name(), err)
	}
	return &stream{Reader: zr, close: func() error {
		zr.Close()
		return f.Close()
	}}, nil
}

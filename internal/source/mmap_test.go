package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, n int, trailingNewline bool) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "m.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		fmt.Fprintf(f, "station-%04d;%d.%d\n", i%57, i%40, i%10)
	}
	if !trailingNewline {
		fmt.Fprintf(f, "last;1.0")
	}
	require.NoError(t, f.Close())
	return path
}

func TestSectionReadersReassemble(t *testing.T) {
	for _, trailing := range []bool{true, false} {
		t.Run(fmt.Sprintf("trailingNewline=%v", trailing), func(t *testing.T) {
			path := writeLines(t, 1000, trailing)
			want, err := os.ReadFile(path)
			require.NoError(t, err)

			sections, closer, err := SectionReaders(path, 4)
			require.NoError(t, err)
			defer closer.Close()

			var got []byte
			for i, sec := range sections {
				b, err := io.ReadAll(sec)
				require.NoError(t, err)
				if i < len(sections)-1 {
					require.Equal(t, byte('\n'), b[len(b)-1], "section %d must end on a newline", i)
				}
				got = append(got, b...)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestSectionReadersMoreSectionsThanBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.txt")
	require.NoError(t, os.WriteFile(path, []byte("a;1.0\n"), 0o644))

	sections, closer, err := SectionReaders(path, 16)
	require.NoError(t, err)
	defer closer.Close()

	var got []byte
	for _, sec := range sections {
		b, err := io.ReadAll(sec)
		require.NoError(t, err)
		got = append(got, b...)
	}
	assert.Equal(t, "a;1.0\n", string(got))
}

func TestSectionReadersMissingFile(t *testing.T) {
	_, _, err := SectionReaders(filepath.Join(t.TempDir(), "nope.txt"), 2)
	assert.Error(t, err)
}

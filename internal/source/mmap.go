package source

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// SectionReaders maps path into memory and splits it into at most
// nsections newline-aligned io.SectionReaders for independent scanning.
// Every section except the last ends on a '\n'; the last one runs to end
// of file, so a missing final newline still reaches a reader. The
// returned closer unmaps the file and must be closed after all sections
// are drained.
func SectionReaders(path string, nsections int) ([]*io.SectionReader, io.Closer, error) {
	mm, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap open: %w", err)
	}

	if nsections < 1 {
		nsections = 1
	}
	total := mm.Len()
	sectionSize := total / nsections

	readers := make([]*io.SectionReader, 0, nsections)
	start := 0
	for i := 0; i < nsections-1 && start < total; i++ {
		end := start + sectionSize
		if end >= total {
			break
		}
		for end < total && mm.At(end) != '\n' {
			end++
		}
		if end < total {
			end++ // keep the newline with its section
		}
		readers = append(readers, io.NewSectionReader(mm, int64(start), int64(end-start)))
		start = end
	}
	if start < total {
		readers = append(readers, io.NewSectionReader(mm, int64(start), int64(total-start)))
	}

	return readers, mm, nil
}

package stats

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// HashTable is a chained-bucket aggregate store keyed by raw name bytes.
// It avoids the per-line map-key materialization of Table, which matters
// on the parallel hot path; keys are only cloned to strings on first
// insert. Not safe for concurrent use; parallel runs keep one per worker
// and Drain into Tables for merging.
type HashTable struct {
	buckets []*hashEntry
	mask    uint64
	entries int
}

type hashEntry struct {
	name  string
	stats StationStats
	next  *hashEntry
}

// NewHashTable allocates a table with nbuckets chains. nbuckets must be a
// power of two so the hash can be masked instead of divided.
func NewHashTable(nbuckets uint64) (*HashTable, error) {
	// http://www.graphics.stanford.edu/~seander/bithacks.html#DetermineIfPowerOf2
	if nbuckets == 0 || (nbuckets&(nbuckets-1)) != 0 {
		return nil, fmt.Errorf("nbuckets must be a power of 2: %d", nbuckets)
	}
	return &HashTable{
		buckets: make([]*hashEntry, nbuckets),
		mask:    nbuckets - 1,
	}, nil
}

// Update folds one measurement into the key's aggregate, seeding a new
// chain entry on first touch.
func (t *HashTable) Update(key []byte, v float64) {
	h := xxhash.Sum64(key) & t.mask

	for e := t.buckets[h]; e != nil; e = e.next {
		if e.name == string(key) {
			e.stats.Add(v)
			return
		}
	}

	e := &hashEntry{name: string(key)}
	e.stats.Add(v)
	e.next = t.buckets[h]
	t.buckets[h] = e
	t.entries++
}

// Len returns the number of distinct keys.
func (t *HashTable) Len() int {
	return t.entries
}

// Drain folds every aggregate into dst. The receiver keeps its entries;
// draining twice double-counts.
func (t *HashTable) Drain(dst *Table) {
	for _, e := range t.buckets {
		for ; e != nil; e = e.next {
			if s, ok := dst.m[e.name]; ok {
				s.Merge(&e.stats)
				continue
			}
			cp := e.stats
			dst.m[e.name] = &cp
		}
	}
}

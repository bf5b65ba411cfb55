package stats

const defaultTableCap = 2048

// Table is the per-key aggregate store, the engine's only mutable state.
// Memory grows with distinct keys, never with record count. Entries are
// created on first touch and never removed. A Table is not safe for
// concurrent mutation; parallel runs keep one per worker and merge.
type Table struct {
	m map[string]*StationStats
}

func NewTable() *Table {
	return &Table{m: make(map[string]*StationStats, defaultTableCap)}
}

// Update folds one measurement into the key's aggregate, seeding a new
// entry when the key has not been seen. The key bytes are only copied on
// first insert.
func (t *Table) Update(key []byte, v float64) {
	if s, ok := t.m[string(key)]; ok {
		s.Add(v)
		return
	}
	t.m[string(key)] = NewStationStats(v)
}

// Get returns the aggregate for key, if present.
func (t *Table) Get(key string) (*StationStats, bool) {
	s, ok := t.m[key]
	return s, ok
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	return len(t.m)
}

// Merge folds other into t key by key. other is not modified and must not
// be updated concurrently with the merge.
func (t *Table) Merge(other *Table) {
	for k, os := range other.m {
		if s, ok := t.m[k]; ok {
			s.Merge(os)
			continue
		}
		cp := *os
		t.m[k] = &cp
	}
}

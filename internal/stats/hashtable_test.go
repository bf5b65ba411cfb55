package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHashTableRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []uint64{0, 3, 100, 1<<14 + 1} {
		_, err := NewHashTable(n)
		assert.Error(t, err, "nbuckets %d", n)
	}

	ht, err := NewHashTable(16)
	require.NoError(t, err)
	assert.Equal(t, 0, ht.Len())
}

func TestHashTableUpdateAndDrain(t *testing.T) {
	ht, err := NewHashTable(16)
	require.NoError(t, err)

	ht.Update([]byte("Hamburg"), 12.0)
	ht.Update([]byte("Bulawayo"), 8.9)
	ht.Update([]byte("Hamburg"), 14.0)
	assert.Equal(t, 2, ht.Len())

	dst := NewTable()
	dst.Update([]byte("Hamburg"), 10.0) // drain merges into existing entries
	ht.Drain(dst)

	require.Equal(t, 2, dst.Len())
	s, ok := dst.Get("Hamburg")
	require.True(t, ok)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 14.0, s.Max)
	assert.Equal(t, int64(3), s.Count)
}

// A tiny bucket count forces chain collisions; aggregates must still land
// on the right keys.
func TestHashTableCollisionChains(t *testing.T) {
	ht, err := NewHashTable(2)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		for j := 0; j < 10; j++ {
			ht.Update([]byte(fmt.Sprintf("station-%03d", j)), float64(i))
		}
	}
	assert.Equal(t, 10, ht.Len())

	dst := NewTable()
	ht.Drain(dst)
	for j := 0; j < 10; j++ {
		s, ok := dst.Get(fmt.Sprintf("station-%03d", j))
		require.True(t, ok)
		assert.Equal(t, 0.0, s.Min)
		assert.Equal(t, 99.0, s.Max)
		assert.Equal(t, int64(100), s.Count)
	}
}

func TestHashTableMatchesTable(t *testing.T) {
	ht, err := NewHashTable(1 << 10)
	require.NoError(t, err)
	tbl := NewTable()

	for i := 0; i < 5000; i++ {
		key := []byte(fmt.Sprintf("k%d", i%97))
		v := float64(i % 31)
		ht.Update(key, v)
		tbl.Update(key, v)
	}

	drained := NewTable()
	ht.Drain(drained)
	assert.Equal(t, Finalize(tbl), Finalize(drained))
}

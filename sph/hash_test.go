package sph

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCellOf(t *testing.T) {
	origin := r2.Vec{X: 20, Y: 100}
	tests := []struct {
		name string
		pos  r2.Vec
		want Cell
	}{
		{"origin", r2.Vec{X: 20, Y: 100}, Cell{0, 0}},
		{"inside first cell", r2.Vec{X: 69.9, Y: 149.9}, Cell{0, 0}},
		{"second cell", r2.Vec{X: 70, Y: 150}, Cell{1, 1}},
		{"left of origin floors down", r2.Vec{X: 19, Y: 99}, Cell{-1, -1}},
		{"far", r2.Vec{X: 520, Y: 600}, Cell{10, 10}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CellOf(tc.pos, origin, 50))
		})
	}
}

func TestNeighborHashesDistinct(t *testing.T) {
	hashes := NeighborHashes(HashOf(Cell{X: 7, Y: 3}))
	seen := make(map[int64]bool)
	for _, h := range hashes {
		assert.False(t, seen[h], "duplicate hash %d", h)
		seen[h] = true
	}
	assert.True(t, seen[HashOf(Cell{X: 7, Y: 3})])
	assert.True(t, seen[HashOf(Cell{X: 6, Y: 2})])
	assert.True(t, seen[HashOf(Cell{X: 8, Y: 4})])
}

func randomPositions(n int, extent float64, seed int64) []r2.Vec {
	rng := rand.New(rand.NewSource(seed))
	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Vec{X: rng.Float64() * extent, Y: rng.Float64() * extent}
	}
	return out
}

func hashesFor(positions []r2.Vec, h float64) []int64 {
	out := make([]int64, len(positions))
	for i, p := range positions {
		out[i] = HashOf(CellOf(p, r2.Vec{}, h))
	}
	return out
}

func TestCandidatesIncludeAllNeighbors(t *testing.T) {
	const h = 20.0
	positions := randomPositions(400, 300, 1)
	hashes := hashesFor(positions, h)

	for i := range positions {
		mask := Candidates(hashes[i], hashes)
		require.True(t, mask[i], "particle %d missing from its own candidates", i)
		for j := range positions {
			if r2.Norm(r2.Sub(positions[i], positions[j])) < h {
				require.True(t, mask[j], "neighbor %d of %d filtered out", j, i)
			}
		}
	}
}

func TestIndexMatchesCandidates(t *testing.T) {
	const h = 25.0
	positions := randomPositions(300, 250, 2)
	hashes := hashesFor(positions, h)

	var ix Index
	ix.Build(hashes)
	require.Equal(t, len(positions), ix.Len())

	var buf []int32
	for i := range positions {
		buf = ix.AppendCandidates(buf[:0], hashes[i])

		var fromIndex []int
		for _, j := range buf {
			fromIndex = append(fromIndex, int(j))
		}
		sort.Ints(fromIndex)

		var fromMask []int
		for j, ok := range Candidates(hashes[i], hashes) {
			if ok {
				fromMask = append(fromMask, j)
			}
		}
		assert.Equal(t, fromMask, fromIndex, "particle %d", i)
	}
}

func TestIndexRebuild(t *testing.T) {
	var ix Index
	ix.Build([]int64{5, 5, 5})
	ix.Build([]int64{HashOf(Cell{100, 100})})
	assert.Equal(t, 1, ix.Len())
	assert.Empty(t, ix.AppendCandidates(nil, HashOf(Cell{0, 0})))
	assert.Equal(t, []int32{0}, ix.AppendCandidates(nil, HashOf(Cell{101, 99})))
}

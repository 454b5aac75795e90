package sph

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hash multipliers. Large distinct odd numbers; the 3x3 offset pattern maps to nine
// distinct values and rows stay apart for grids narrower than hashY/hashX cells.
const (
	hashX int64 = 15823
	hashY int64 = 9737333
)

// Cell is an integer grid coordinate.
type Cell struct {
	X, Y int64
}

// CellOf returns the grid cell containing pos, measured from origin in cells of size.
// Floor division, so positions left of or above the origin get negative cells.
func CellOf(pos, origin r2.Vec, size float64) Cell {
	return Cell{
		X: int64(math.Floor((pos.X - origin.X) / size)),
		Y: int64(math.Floor((pos.Y - origin.Y) / size)),
	}
}

// HashOf folds a cell into a single bucket key.
func HashOf(c Cell) int64 {
	return c.X*hashX + c.Y*hashY
}

// neighborOffsets is the 3x3 pattern pre-folded into hash space.
var neighborOffsets = func() [9]int64 {
	var out [9]int64
	i := 0
	for dy := int64(-1); dy <= 1; dy++ {
		for dx := int64(-1); dx <= 1; dx++ {
			out[i] = HashOf(Cell{X: dx, Y: dy})
			i++
		}
	}
	return out
}()

// NeighborHashes returns the hashes of the cell and its 8 surrounding cells.
func NeighborHashes(hash int64) [9]int64 {
	out := neighborOffsets
	for i := range out {
		out[i] += hash
	}
	return out
}

// Candidates returns a mask over all particles that are true for every particle whose
// hash falls in the 3x3 window around own. This is the brute-force form of Index.
func Candidates(own int64, all []int64) []bool {
	mask := make([]bool, len(all))
	window := NeighborHashes(own)
	for i, h := range all {
		for _, w := range window {
			if h == w {
				mask[i] = true
				break
			}
		}
	}
	return mask
}

// indexEntry pairs a particle with its cell hash.
type indexEntry struct {
	hash int64
	idx  int32
}

// Index is a per-step grouping of particles by cell hash. It is rebuilt from scratch
// each step and never updated incrementally.
type Index struct {
	entries []indexEntry
}

// Build replaces the index contents with the given hashes. Entries are ordered by
// (hash, particle) so lookups return particles in ascending index order.
func (ix *Index) Build(hashes []int64) {
	if cap(ix.entries) < len(hashes) {
		ix.entries = make([]indexEntry, len(hashes))
	}
	ix.entries = ix.entries[:len(hashes)]
	for i, h := range hashes {
		ix.entries[i] = indexEntry{hash: h, idx: int32(i)}
	}
	sort.Slice(ix.entries, func(a, b int) bool {
		ea, eb := ix.entries[a], ix.entries[b]
		if ea.hash != eb.hash {
			return ea.hash < eb.hash
		}
		return ea.idx < eb.idx
	})
}

// Len returns the number of indexed particles.
func (ix *Index) Len() int { return len(ix.entries) }

// bucket returns the contiguous run of entries with the given hash.
func (ix *Index) bucket(hash int64) []indexEntry {
	lo := sort.Search(len(ix.entries), func(i int) bool { return ix.entries[i].hash >= hash })
	hi := lo
	for hi < len(ix.entries) && ix.entries[hi].hash == hash {
		hi++
	}
	return ix.entries[lo:hi]
}

// AppendCandidates appends every particle in the 3x3 window around hash to dst.
// Reuse dst across calls to avoid allocations.
func (ix *Index) AppendCandidates(dst []int32, hash int64) []int32 {
	for _, h := range NeighborHashes(hash) {
		for _, e := range ix.bucket(h) {
			dst = append(dst, e.idx)
		}
	}
	return dst
}

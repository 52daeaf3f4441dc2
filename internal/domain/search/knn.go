package search

import (
	"container/heap"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// distanceDecimals is the precision of distances handed to callers.
const distanceDecimals = 3

// neighbor is one candidate. dist is the squared Euclidean distance.
type neighbor struct {
	row  uint32
	dist float64
}

// worse reports whether a ranks after b: farther, or equally far and later in the table.
func worse(a, b neighbor) bool {
	if a.dist != b.dist {
		return a.dist > b.dist
	}
	return a.row > b.row
}

// neighborHeap keeps the worst retained neighbor on top.
type neighborHeap []neighbor

var _ heap.Interface = (*neighborHeap)(nil)

func (h neighborHeap) Len() int           { return len(h) }
func (h neighborHeap) Less(i, j int) bool { return worse(h[i], h[j]) }
func (h neighborHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *neighborHeap) Push(x any)        { *h = append(*h, x.(neighbor)) }
func (h *neighborHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// flatIndex is an exact Euclidean index over one candidate pool. It copies
// the pool's standardized rows into a single arena and is discarded after
// the query that built it.
type flatIndex struct {
	dim  int
	rows []uint32
	vecs []float64
}

// newFlatIndex gathers the vectors of pool from ds.
func newFlatIndex(ds Dataset, pool *roaring.Bitmap) *flatIndex {
	dim := ds.Dim()
	n := int(pool.GetCardinality())
	idx := &flatIndex{
		dim:  dim,
		rows: make([]uint32, 0, n),
		vecs: make([]float64, 0, n*dim),
	}
	it := pool.Iterator()
	for it.HasNext() {
		row := it.Next()
		idx.rows = append(idx.rows, row)
		idx.vecs = append(idx.vecs, ds.Vector(int(row))...)
	}
	return idx
}

// Len returns the number of indexed vectors.
func (f *flatIndex) Len() int { return len(f.rows) }

// Search returns the k nearest rows to q in ascending (distance, row) order.
// k is clamped to the index size.
func (f *flatIndex) Search(q []float64, k int) []neighbor {
	if k > len(f.rows) {
		k = len(f.rows)
	}
	if k <= 0 {
		return nil
	}
	h := make(neighborHeap, 0, k)
	for i, row := range f.rows {
		cand := neighbor{row: row, dist: squaredL2(q, f.vecs[i*f.dim:(i+1)*f.dim])}
		if h.Len() < k {
			heap.Push(&h, cand)
			continue
		}
		if worse(h[0], cand) {
			h[0] = cand
			heap.Fix(&h, 0)
		}
	}
	out := []neighbor(h)
	sort.Slice(out, func(i, j int) bool { return worse(out[j], out[i]) })
	return out
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// roundDistance converts a squared distance to a Euclidean distance rounded for display.
func roundDistance(sq float64) float64 {
	p := math.Pow10(distanceDecimals)
	return math.Round(math.Sqrt(sq)*p) / p
}

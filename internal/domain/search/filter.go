package search

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/okian/scout/internal/domain/model"
)

// FilterIndex holds per-snapshot secondary indexes used to build candidate
// pools. Each constraint compiles to its own bitmap; pools are their AND.
type FilterIndex struct {
	all       *roaring.Bitmap
	leagues   map[string]*roaring.Bitmap
	hasLeague bool

	// rows sorted ascending by value / age, ties in table order
	byValue []uint32
	values  []float64
	byAge   []uint32
	ages    []int
}

// NewFilterIndex indexes players, which must be in table order.
func NewFilterIndex(players []model.Player, hasLeague bool) *FilterIndex {
	f := &FilterIndex{
		all:       roaring.New(),
		leagues:   make(map[string]*roaring.Bitmap),
		hasLeague: hasLeague,
		byValue:   make([]uint32, len(players)),
		byAge:     make([]uint32, len(players)),
	}
	for i, p := range players {
		row := uint32(i)
		f.all.Add(row)
		f.byValue[i] = row
		f.byAge[i] = row
		if hasLeague {
			bm, ok := f.leagues[p.League]
			if !ok {
				bm = roaring.New()
				f.leagues[p.League] = bm
			}
			bm.Add(row)
		}
	}
	sort.SliceStable(f.byValue, func(a, b int) bool {
		return players[f.byValue[a]].ValueEUR < players[f.byValue[b]].ValueEUR
	})
	sort.SliceStable(f.byAge, func(a, b int) bool {
		return players[f.byAge[a]].Age < players[f.byAge[b]].Age
	})
	f.values = make([]float64, len(players))
	f.ages = make([]int, len(players))
	for i := range players {
		f.values[i] = players[f.byValue[i]].ValueEUR
		f.ages[i] = players[f.byAge[i]].Age
	}
	for _, bm := range f.leagues {
		bm.RunOptimize()
	}
	return f
}

// HasLeague reports whether the dataset carries league information.
func (f *FilterIndex) HasLeague() bool { return f.hasLeague }

// Leagues returns the distinct league names, sorted.
func (f *FilterIndex) Leagues() []string {
	out := make([]string, 0, len(f.leagues))
	for l := range f.leagues {
		if l != "" {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// Pool returns the rows that survive q, excluding the reference row.
// The returned bitmap is owned by the caller.
func (f *FilterIndex) Pool(reference int, q Query) *roaring.Bitmap {
	pool := f.all.Clone()
	pool.Remove(uint32(reference))

	if q.MaxValue != nil {
		limit := *q.MaxValue
		n := sort.Search(len(f.values), func(i int) bool { return f.values[i] > limit })
		pool.And(roaring.BitmapOf(f.byValue[:n]...))
	}
	if q.MaxAge != nil {
		limit := *q.MaxAge
		n := sort.Search(len(f.ages), func(i int) bool { return f.ages[i] > limit })
		pool.And(roaring.BitmapOf(f.byAge[:n]...))
	}
	if q.League != nil {
		bm, ok := f.leagues[*q.League]
		if !ok {
			return roaring.New()
		}
		pool.And(bm)
	}
	return pool
}

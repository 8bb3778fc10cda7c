package station

import (
	"sort"
)

// NoHit marks a slot that no plume reaches.
const NoHit = -1.0

// Hit is one arrival of a plume at the shoreline: the normalized arrival
// index and the dilution at contact.
type Hit struct {
	Arrival  int     `json:"arrival"`
	Dilution float64 `json:"dilution"`
}

// HitTable maps a normalized injection index to its arrivals, sorted by
// arrival index with at most one entry per index.
type HitTable map[int][]Hit

// insertHit adds h to hits, keeping the greater dilution when the arrival
// index is already present. hits stays sorted by arrival.
func insertHit(hits []Hit, h Hit) []Hit {
	i := sort.Search(len(hits), func(i int) bool { return hits[i].Arrival >= h.Arrival })
	if i < len(hits) && hits[i].Arrival == h.Arrival {
		if h.Dilution > hits[i].Dilution {
			hits[i].Dilution = h.Dilution
		}
		return hits
	}
	hits = append(hits, Hit{})
	copy(hits[i+1:], hits[i:])
	hits[i] = h
	return hits
}

// Merge folds other into t, entry by entry.
func (t HitTable) Merge(other HitTable) {
	for inj, hits := range other {
		mine, ok := t[inj]
		if !ok {
			t[inj] = append([]Hit(nil), hits...)
			continue
		}
		for _, h := range hits {
			mine = insertHit(mine, h)
		}
		t[inj] = mine
	}
}

// Clone returns a deep copy of the table.
func (t HitTable) Clone() HitTable {
	out := make(HitTable, len(t))
	for k, v := range t {
		out[k] = append([]Hit(nil), v...)
	}
	return out
}

// HitGrid holds, for each transit time, the dilution reaching the shore in
// consecutive 900 s slots counted from a reference instant. Rows may have
// different lengths; slots past the end of a row are NoHit.
type HitGrid [][]float64

// IsHit reports whether a slot value denotes a plume arrival.
func IsHit(d float64) bool {
	return d > 0
}

func newHitGrid(rows int) HitGrid {
	return make(HitGrid, rows)
}

// setAt stores d at (row, slot), growing the row and keeping the maximum.
func (g HitGrid) setAt(row, slot int, d float64) {
	r := g[row]
	for len(r) <= slot {
		r = append(r, NoHit)
	}
	if d > r[slot] {
		r[slot] = d
	}
	g[row] = r
}

// Clone returns a deep copy of the grid.
func (g HitGrid) Clone() HitGrid {
	out := make(HitGrid, len(g))
	for i, r := range g {
		out[i] = append([]float64(nil), r...)
	}
	return out
}

// Merge folds other into g, taking the maximum at every position. Missing
// rows and slots count as NoHit, so merging into an empty grid copies other.
func (g *HitGrid) Merge(other HitGrid) {
	for len(*g) < len(other) {
		*g = append(*g, nil)
	}
	for i, r := range other {
		for j, d := range r {
			(*g).setAt(i, j, d)
		}
	}
}

// CollapseTransitTimes merges all rows into one, for queries where arrivals
// by different flow paths count as a single exposure.
func (g HitGrid) CollapseTransitTimes() HitGrid {
	if len(g) == 0 {
		return HitGrid{}
	}
	out := HitGrid{nil}
	for _, r := range g {
		for j, d := range r {
			out.setAt(0, j, d)
		}
	}
	return out
}

// ReduceHits returns the coordinate-wise maximum of a and b. It is
// idempotent and commutative, and the empty grid is its identity.
func ReduceHits(a, b HitGrid) HitGrid {
	out := a.Clone()
	out.Merge(b)
	return out
}

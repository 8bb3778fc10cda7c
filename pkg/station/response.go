package station

import (
	"fmt"
	"sort"
	"time"

	"github.com/secretyv/ASur/pkg/river"
	"github.com/secretyv/ASur/pkg/tide"
)

// CycleKey identifies a tide cycle by its duration, in seconds, and its
// amplitude, in metres. Two responses with the same key are the same cycle
// whatever their tables hold.
type CycleKey struct {
	Duration  float64 `json:"duration"`
	Amplitude float64 `json:"amplitude"`
}

// Less orders keys by amplitude, then duration.
func (k CycleKey) Less(o CycleKey) bool {
	if k.Amplitude != o.Amplitude {
		return k.Amplitude < o.Amplitude
	}
	return k.Duration < o.Duration
}

// ID is the user facing cycle identifier.
func (k CycleKey) ID() string {
	return fmt.Sprintf("dh=%.2f, dt=%.2f", k.Amplitude, k.Duration/3600)
}

// PathHit is one arrival of a path table: the arrival index, the hash of
// the particle path in the path store and whether the path reaches the
// shore directly.
type PathHit struct {
	Arrival int    `json:"arrival"`
	Hash    string `json:"hash"`
	Direct  bool   `json:"direct"`
}

// PathTable maps a normalized injection index to the paths it produces.
type PathTable map[int][]PathHit

func insertPath(paths []PathHit, p PathHit) []PathHit {
	for _, q := range paths {
		if q.Arrival == p.Arrival && q.Hash == p.Hash {
			return paths
		}
	}
	paths = append(paths, p)
	sort.SliceStable(paths, func(i, j int) bool { return paths[i].Arrival < paths[j].Arrival })
	return paths
}

// TideResponse is the precomputed response of one overflow point to one
// tide cycle.
type TideResponse struct {
	river    *river.River
	distance float64
	key      CycleKey
	hits     HitTable
	paths    PathTable
}

// NewTideResponse builds a response. river may be nil for a point that
// sits on the shore.
func NewTideResponse(rv *river.River, distance float64, key CycleKey, hits HitTable, paths PathTable) *TideResponse {
	if hits == nil {
		hits = HitTable{}
	}
	if paths == nil {
		paths = PathTable{}
	}
	return &TideResponse{river: rv, distance: distance, key: key, hits: hits, paths: paths}
}

// Key returns the cycle key.
func (r *TideResponse) Key() CycleKey { return r.key }

// ID returns the cycle identifier.
func (r *TideResponse) ID() string { return r.key.ID() }

// Hits returns the arrivals for an injection index.
func (r *TideResponse) Hits(injection int) []Hit { return r.hits[injection] }

// Paths returns the paths for an injection index.
func (r *TideResponse) Paths(injection int) []PathHit { return r.paths[injection] }

// TransitTimes returns one travel time per river velocity, or a single zero
// transit time when the point has no river.
func (r *TideResponse) TransitTimes() []time.Duration {
	if r.river == nil {
		return []time.Duration{0}
	}
	return r.river.TransitTimes(r.distance)
}

// rebind copies the response for another point.
func (r *TideResponse) rebind(rv *river.River, distance float64) *TideResponse {
	paths := make(PathTable, len(r.paths))
	for k, v := range r.paths {
		paths[k] = append([]PathHit(nil), v...)
	}
	return NewTideResponse(rv, distance, r.key, r.hits.Clone(), paths)
}

// MergeTideData folds the hit table of other into r.
func (r *TideResponse) MergeTideData(other *TideResponse) {
	r.hits.Merge(other.hits)
}

// MergePathData folds the path table of other into r. Paths are unique by
// arrival index and hash.
func (r *TideResponse) MergePathData(other *TideResponse) {
	for inj, paths := range other.paths {
		mine, ok := r.paths[inj]
		if !ok {
			r.paths[inj] = append([]PathHit(nil), paths...)
			continue
		}
		for _, p := range paths {
			mine = insertPath(mine, p)
		}
		r.paths[inj] = mine
	}
}

// slotOffset converts an instant into a 900 s slot count from ref.
func slotOffset(at, ref time.Time) int {
	return int(at.Sub(ref).Seconds()/tide.SlotDuration.Seconds() + 0.5)
}

// arrivalTime converts an arrival index into an instant. The plume enters
// the estuary at tRiver, whose phase is the injection index.
func arrivalTime(tRiver time.Time, injection, arrival int) time.Time {
	return tRiver.Add(time.Duration(arrival-injection) * tide.SlotDuration)
}

// HitsForOneInjection computes, for one injection instant, the dilution
// reaching the shore per transit time and per slot counted from tRef.
// Arrivals before tRef are dropped.
func (r *TideResponse) HitsForOneInjection(tActual, tRef time.Time, tbl *tide.Table) (HitGrid, error) {
	transits := r.TransitTimes()
	grid := newHitGrid(len(transits))

	for i, dt := range transits {
		tRiver := tActual.Add(dt)
		inj, err := tbl.NormalizedTimeIndex(tRiver)
		if err != nil {
			return nil, fmt.Errorf("cycle %s: %w", r.ID(), err)
		}

		for _, h := range r.hits[inj] {
			off := slotOffset(arrivalTime(tRiver, inj, h.Arrival), tRef)
			if off < 0 {
				continue
			}
			grid.setAt(i, off, h.Dilution)
		}
	}
	return grid, nil
}

// injectionTimes splits [start, end] into neff equal steps close to step
// and returns the neff+1 step boundaries.
func injectionTimes(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step <= 0 {
		return nil, fmt.Errorf("invalid time step %s", step)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("invalid spill window %s - %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	span := end.Sub(start)
	neff := int(span.Seconds()/step.Seconds() + 0.5)
	if neff < 1 {
		neff = 1
	}
	dteff := span / time.Duration(neff)

	out := make([]time.Time, neff+1)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * dteff)
	}
	out[neff] = end
	return out, nil
}

// HitsForSpillWindow reduces the hits of every injection instant of the
// spill window [start, end]. With mergeTransitTimes the transit times of
// each instant are collapsed into one row before reduction.
func (r *TideResponse) HitsForSpillWindow(start, end time.Time, step time.Duration, tbl *tide.Table, mergeTransitTimes bool) (HitGrid, error) {
	times, err := injectionTimes(start, end, step)
	if err != nil {
		return nil, err
	}

	var acc HitGrid
	for _, at := range times {
		g, err := r.HitsForOneInjection(at, start, tbl)
		if err != nil {
			return nil, err
		}
		if mergeTransitTimes {
			g = g.CollapseTransitTimes()
		}
		acc.Merge(g)
	}
	return acc, nil
}

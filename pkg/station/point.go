package station

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/secretyv/ASur/pkg/river"
	"github.com/secretyv/ASur/pkg/tide"
	"github.com/secretyv/ASur/pkg/timeline"
)

// Point is one overflow point with its tide cycle responses. A point with
// a parent also holds the parent's responses, merged into its own.
type Point struct {
	name      string
	river     *river.River
	distance  float64
	parent    *Point
	polygon   Polygon
	responses []*TideResponse
	logger    *slog.Logger
}

// NewPoint builds a point without parent. rv may be nil for a point on the
// shore. Responses sharing a cycle key are merged.
func NewPoint(name string, rv *river.River, distance float64, polygon Polygon, logger *slog.Logger, responses ...*TideResponse) *Point {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Point{name: name, river: rv, distance: distance, polygon: polygon, logger: logger}
	for _, r := range responses {
		p.addResponse(r)
	}
	return p
}

// Name returns the point name.
func (p *Point) Name() string { return p.name }

// River returns the river the point drains into, or nil.
func (p *Point) River() *river.River { return p.river }

// Distance returns the distance to the shoreline along the river, in metres.
func (p *Point) Distance() float64 { return p.distance }

// Parent returns the parent point, or nil.
func (p *Point) Parent() *Point { return p.parent }

// Polygon returns the boundary polygon of the point.
func (p *Point) Polygon() Polygon { return p.polygon }

func (p *Point) String() string {
	rv := "none"
	if p.river != nil {
		rv = p.river.Name
	}
	parent := "none"
	if p.parent != nil {
		parent = p.parent.name
	}
	return fmt.Sprintf("Point: %s; River: %s, Dist=%f, Parent point: %s", p.name, rv, p.distance, parent)
}

// Responses returns the tide responses sorted by cycle key.
func (p *Point) Responses() []*TideResponse {
	out := append([]*TideResponse(nil), p.responses...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].key.Less(out[j].key) })
	return out
}

// TideCycleIDs returns the ids of every tide cycle, sorted by cycle key.
func (p *Point) TideCycleIDs() []string {
	rs := p.Responses()
	ids := make([]string, len(rs))
	for i, r := range rs {
		ids[i] = r.ID()
	}
	return ids
}

// TideResponse returns the response with the given cycle id.
func (p *Point) TideResponse(id string) (*TideResponse, error) {
	for _, r := range p.responses {
		if r.ID() == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("point %s, cycle %q: %w", p.name, id, ErrUnknownTideCycle)
}

// addResponse merges r into the response with the same cycle key, or
// appends it.
func (p *Point) addResponse(r *TideResponse) {
	for _, mine := range p.responses {
		if mine.key == r.key {
			mine.MergeTideData(r)
			mine.MergePathData(r)
			return
		}
	}
	p.responses = append(p.responses, r)
}

// inherit copies the responses of the parent into p.
func (p *Point) inherit(parent *Point) {
	p.parent = parent
	for _, r := range parent.responses {
		p.addResponse(r.rebind(p.river, p.distance))
	}
}

// selectResponses resolves cycle ids. An empty list selects every cycle;
// unknown ids are logged and skipped.
func (p *Point) selectResponses(cycleIDs []string) []*TideResponse {
	if len(cycleIDs) == 0 {
		return p.Responses()
	}

	var out []*TideResponse
	for _, id := range cycleIDs {
		r, err := p.TideResponse(id)
		if err != nil {
			p.logger.Warn("Skipping tide cycle", "point", p.name, "cycle", id, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// HitsForSpillWindow reduces the hit grids of the selected tide cycles
// over the spill window [start, end].
func (p *Point) HitsForSpillWindow(start, end time.Time, step time.Duration, tbl *tide.Table, cycleIDs []string, mergeTransitTimes bool) (HitGrid, error) {
	var acc HitGrid
	for _, r := range p.selectResponses(cycleIDs) {
		g, err := r.HitsForSpillWindow(start, end, step, tbl, mergeTransitTimes)
		if err != nil {
			return nil, fmt.Errorf("point %s: %w", p.name, err)
		}
		acc.Merge(g)
	}
	return acc, nil
}

// Overflow computes the exposure windows of a spill from start to end.
// The result holds, per transit time, the list of exposure windows; each
// window is a run of 900 s slots valued with the dilution.
func (p *Point) Overflow(start, end time.Time, step time.Duration, tbl *tide.Table, cycleIDs []string, mergeTransitTimes bool) ([][]timeline.NumericTimeline, error) {
	p.logger.Debug("Computing overflow", "point", p.name, "start", start, "end", end)

	grid, err := p.HitsForSpillWindow(start, end, step, tbl, cycleIDs, mergeTransitTimes)
	if err != nil {
		return nil, err
	}
	return Compact(grid, start), nil
}

// Compact turns a hit grid into exposure windows. A window opens on the
// first hit slot and runs through hit slots; a single missing slot between
// two hits is bridged with the mean of its neighbours, two or more close
// the window.
func Compact(grid HitGrid, ref time.Time) [][]timeline.NumericTimeline {
	out := make([][]timeline.NumericTimeline, len(grid))

	for it, row := range grid {
		n := len(row)
		var windows []timeline.NumericTimeline

		i := 0
		for i < n {
			for i < n && !IsHit(row[i]) {
				i++
			}

			var w timeline.NumericTimeline
			for i < n && (IsHit(row[i]) || (i+1 < n && IsHit(row[i+1]))) {
				d := row[i]
				if !IsHit(d) {
					d = (row[i+1] + row[i-1]) / 2
				}
				t0 := ref.Add(time.Duration(i) * tide.SlotDuration)
				w = append(w, timeline.NumericInterval{Value: d, Start: t0, End: t0.Add(tide.SlotDuration)})
				i++
			}
			if len(w) > 0 {
				windows = append(windows, w)
			}
		}
		out[it] = windows
	}
	return out
}

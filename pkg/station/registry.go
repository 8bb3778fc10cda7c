package station

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/tide"
	"github.com/secretyv/ASur/pkg/timeline"
)

// PointExposure is the result of one overflow event: per transit time, the
// exposure windows at the shore.
type PointExposure struct {
	Point    string                       `json:"point"`
	Overflow overflow.Overflow            `json:"overflow"`
	Windows  [][]timeline.NumericTimeline `json:"windows"`
}

// Registry owns the overflow points of a data set. It is read-only once
// loaded and safe for concurrent queries.
type Registry struct {
	dataDir string
	points  []*Point
	index   map[string]int
	info    []string
	store   PathStore
	logger  *slog.Logger
}

func newRegistry(dataDir string, points []*Point, info []string, logger *slog.Logger) *Registry {
	reg := &Registry{
		dataDir: dataDir,
		points:  points,
		index:   make(map[string]int, len(points)),
		info:    info,
		logger:  logger,
	}
	for i, p := range points {
		reg.index[p.name] = i
	}
	return reg
}

// DataDir returns the directory the registry was loaded from.
func (reg *Registry) DataDir() string { return reg.dataDir }

// Info returns the comment lines of the tide response table.
func (reg *Registry) Info() []string {
	return append([]string(nil), reg.info...)
}

// SetPathStore sets the store used to attach particle paths to plumes.
// It must be called before the registry is shared.
func (reg *Registry) SetPathStore(store PathStore) {
	reg.store = store
}

// Len returns the number of points.
func (reg *Registry) Len() int { return len(reg.points) }

// Names returns the point names, sorted.
func (reg *Registry) Names() []string {
	names := make([]string, 0, len(reg.points))
	for _, p := range reg.points {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

// Point returns the named point.
func (reg *Registry) Point(name string) (*Point, error) {
	i, ok := reg.index[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownPoint)
	}
	return reg.points[i], nil
}

// Exposure computes the exposure windows of one event.
func (reg *Registry) Exposure(tbl *tide.Table, step time.Duration, o overflow.Overflow, mergeTransitTimes bool) (PointExposure, error) {
	p, err := reg.Point(o.Point)
	if err != nil {
		return PointExposure{}, err
	}
	windows, err := p.Overflow(o.Start, o.End, step, tbl, o.TideCycles, mergeTransitTimes)
	if err != nil {
		return PointExposure{}, err
	}
	return PointExposure{Point: p.name, Overflow: o, Windows: windows}, nil
}

// OverflowData computes the exposure windows of every event. Events on
// unknown points are logged and skipped.
func (reg *Registry) OverflowData(tbl *tide.Table, step time.Duration, overflows []overflow.Overflow, mergeTransitTimes bool) ([]PointExposure, error) {
	var res []PointExposure
	for _, o := range overflows {
		pe, err := reg.Exposure(tbl, step, o, mergeTransitTimes)
		if errors.Is(err, ErrUnknownPoint) {
			reg.logger.Warn("Skipping point", "point", o.Point, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, pe)
	}
	return res, nil
}

// Plumes collects the plume records of one event.
func (reg *Registry) Plumes(tbl *tide.Table, step time.Duration, o overflow.Overflow) ([]Plume, error) {
	p, err := reg.Point(o.Point)
	if err != nil {
		return nil, err
	}
	return p.Plumes(o.Start, o.End, step, tbl, o.TideCycles, reg.store)
}

// OverflowPlumes collects the plume records of every event. Events on
// unknown points are logged and skipped.
func (reg *Registry) OverflowPlumes(tbl *tide.Table, step time.Duration, overflows []overflow.Overflow) ([]Plume, error) {
	var res []Plume
	for _, o := range overflows {
		plumes, err := reg.Plumes(tbl, step, o)
		if errors.Is(err, ErrUnknownPoint) {
			reg.logger.Warn("Skipping point", "point", o.Point, "error", err)
			continue
		}
		if err != nil {
			return nil, err
		}
		res = append(res, plumes...)
	}
	return res, nil
}

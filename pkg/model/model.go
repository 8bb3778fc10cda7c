// Package model is the entry point of the arrival-time engine. A Model
// loads a data set once and answers overflow queries against it.
package model

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/river"
	"github.com/secretyv/ASur/pkg/station"
	"github.com/secretyv/ASur/pkg/tide"
)

// Config locates a data set.
type Config struct {
	// DataDir holds rivers.txt and the overflow point tables.
	DataDir string
	// TideFile is the tide table, relative to DataDir unless absolute.
	// Defaults to tide.DefaultFile.
	TideFile string
	Logger   *slog.Logger
}

// Model holds a loaded data set. It is read-only after Load and safe for
// concurrent queries.
type Model struct {
	dataDir  string
	rivers   *river.Rivers
	registry *station.Registry
	tides    *tide.Table
	logger   *slog.Logger
}

// Load reads the rivers, the overflow points and the tide table of a data
// set.
func Load(cfg Config) (*Model, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tideFile := cfg.TideFile
	if tideFile == "" {
		tideFile = tide.DefaultFile
	}
	if !filepath.IsAbs(tideFile) {
		tideFile = filepath.Join(cfg.DataDir, tideFile)
	}

	rivers, err := river.Load(cfg.DataDir, logger)
	if err != nil {
		return nil, err
	}
	registry, err := station.Load(cfg.DataDir, rivers, logger)
	if err != nil {
		return nil, err
	}
	tides, err := tide.Load(tideFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load tide table: %w", err)
	}

	first, last := tides.Span()
	logger.Info("Model loaded",
		"data_dir", cfg.DataDir,
		"rivers", rivers.Len(),
		"points", registry.Len(),
		"tide_records", tides.Len(),
		"tide_start", first,
		"tide_end", last)

	return &Model{
		dataDir:  cfg.DataDir,
		rivers:   rivers,
		registry: registry,
		tides:    tides,
		logger:   logger,
	}, nil
}

// New assembles a model from already loaded parts.
func New(registry *station.Registry, tides *tide.Table, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		dataDir:  registry.DataDir(),
		registry: registry,
		tides:    tides,
		logger:   logger,
	}
}

func (m *Model) DataDir() string { return m.dataDir }

// Info returns the description lines of the data set.
func (m *Model) Info() []string { return m.registry.Info() }

// Tides returns the tide table.
func (m *Model) Tides() *tide.Table { return m.tides }

func (m *Model) PointNames() []string { return m.registry.Names() }

// PointTideCycleIDs returns the tide cycle ids available at a point,
// sorted by amplitude then duration.
func (m *Model) PointTideCycleIDs(name string) ([]string, error) {
	p, err := m.registry.Point(name)
	if err != nil {
		return nil, err
	}
	return p.TideCycleIDs(), nil
}

// TideSignal samples the water level from start to end.
func (m *Model) TideSignal(start, end time.Time, step time.Duration) ([]tide.Record, error) {
	return m.tides.Signal(start, end, step)
}

// Exposure computes the exposure windows of a single event.
func (m *Model) Exposure(step time.Duration, o overflow.Overflow, mergeTransitTimes bool) (station.PointExposure, error) {
	if err := overflow.ValidateAll([]overflow.Overflow{o}); err != nil {
		return station.PointExposure{}, err
	}
	return m.registry.Exposure(m.tides, step, o, mergeTransitTimes)
}

// Plumes collects the plume records of a single event.
func (m *Model) Plumes(step time.Duration, o overflow.Overflow) ([]station.Plume, error) {
	if err := overflow.ValidateAll([]overflow.Overflow{o}); err != nil {
		return nil, err
	}
	return m.registry.Plumes(m.tides, step, o)
}

// OverflowData computes the exposure windows of a batch of events. The
// whole batch is rejected when any event is invalid.
func (m *Model) OverflowData(step time.Duration, overflows []overflow.Overflow, mergeTransitTimes bool) ([]station.PointExposure, error) {
	if err := overflow.ValidateAll(overflows); err != nil {
		return nil, err
	}
	return m.registry.OverflowData(m.tides, step, overflows, mergeTransitTimes)
}

// OverflowPlumes collects the plume records of a batch of events.
func (m *Model) OverflowPlumes(step time.Duration, overflows []overflow.Overflow) ([]station.Plume, error) {
	if err := overflow.ValidateAll(overflows); err != nil {
		return nil, err
	}
	return m.registry.OverflowPlumes(m.tides, step, overflows)
}

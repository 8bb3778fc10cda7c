package station

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/secretyv/ASur/pkg/literal"
	"github.com/secretyv/ASur/pkg/river"
)

// Point table file names, looked up in a data directory.
const (
	LinkFile    = "overflow.river.txt"
	TideFile    = "overflow.tide.txt"
	PathFile    = "overflow.path.txt"
	PolygonFile = "overflow.polygon.txt"
)

// pointEntry is a point as read from the tables, before links are
// resolved.
type pointEntry struct {
	row        literal.Row
	name       string
	river      *river.River
	distance   float64
	parentName string
	polygon    Polygon
	responses  []*TideResponse
}

func (s *pointEntry) response(key CycleKey) *TideResponse {
	for _, r := range s.responses {
		if r.key == key {
			return r
		}
	}
	r := NewTideResponse(s.river, s.distance, key, nil, nil)
	s.responses = append(s.responses, r)
	return r
}

type loader struct {
	rivers  *river.Rivers
	entries []*pointEntry
	index   map[string]int
}

func (l *loader) entry(row literal.Row) (*pointEntry, error) {
	i, ok := l.index[row.Fields[0]]
	if !ok {
		return nil, row.Errorf("point %q is not in %s", row.Fields[0], LinkFile)
	}
	return l.entries[i], nil
}

// linkRow decodes `name[; river; distance[; parent]]`.
func (l *loader) linkRow(row literal.Row) error {
	nf := len(row.Fields)
	if nf != 1 && nf != 3 && nf != 4 {
		return row.Errorf("expected 1, 3 or 4 fields, got %d", nf)
	}

	s := &pointEntry{row: row, name: row.Fields[0]}
	if s.name == "" {
		return row.Errorf("empty point name")
	}
	if _, dup := l.index[s.name]; dup {
		return row.Errorf("duplicate point %q", s.name)
	}

	if nf >= 3 {
		rv, ok := l.rivers.Get(row.Fields[1])
		if !ok {
			return row.Errorf("unknown river %q", row.Fields[1])
		}
		d, err := strconv.ParseFloat(row.Fields[2], 64)
		if err != nil {
			return row.Errorf("invalid distance: %w", err)
		}
		s.river, s.distance = rv, d
	}
	if nf == 4 {
		if row.Fields[3] == "" {
			return row.Errorf("empty parent name")
		}
		s.parentName = row.Fields[3]
	}

	l.index[s.name] = len(l.entries)
	l.entries = append(l.entries, s)
	return nil
}

func decodeKey(src string) (CycleKey, error) {
	val, err := literal.Parse(src)
	if err != nil {
		return CycleKey{}, err
	}
	dt, dh, err := literal.Pair(val)
	if err != nil {
		return CycleKey{}, fmt.Errorf("tide cycle: %w", err)
	}
	return CycleKey{Duration: dt, Amplitude: dh}, nil
}

// tideRow decodes `name; (duration, amplitude); {inj: [(arr, dil), ...]}`.
func (l *loader) tideRow(row literal.Row) error {
	if len(row.Fields) != 3 {
		return row.Errorf("expected 3 fields, got %d", len(row.Fields))
	}
	s, err := l.entry(row)
	if err != nil {
		return err
	}
	key, err := decodeKey(row.Fields[1])
	if err != nil {
		return err
	}

	val, err := literal.Parse(row.Fields[2])
	if err != nil {
		return err
	}
	entries, err := literal.IntDict(val)
	if err != nil {
		return fmt.Errorf("hit table: %w", err)
	}

	hits := HitTable{}
	for _, e := range entries {
		elems, err := literal.Elements(e.Value)
		if err != nil {
			return fmt.Errorf("injection %d: %w", e.Key, err)
		}
		var list []Hit
		for _, el := range elems {
			parts, err := literal.Elements(el)
			if err != nil || len(parts) != 2 {
				return fmt.Errorf("injection %d: expected (arrival, dilution)", e.Key)
			}
			arr, err := literal.Int(parts[0])
			if err != nil {
				return fmt.Errorf("injection %d: arrival: %w", e.Key, err)
			}
			dil, err := literal.Float(parts[1])
			if err != nil {
				return fmt.Errorf("injection %d: dilution: %w", e.Key, err)
			}
			list = insertHit(list, Hit{Arrival: arr, Dilution: dil})
		}
		hits[e.Key] = list
	}

	s.response(key).hits.Merge(hits)
	return nil
}

// pathRow decodes `name; (duration, amplitude); {inj: [(arr, hash, direct), ...]}`.
func (l *loader) pathRow(row literal.Row) error {
	if len(row.Fields) != 3 {
		return row.Errorf("expected 3 fields, got %d", len(row.Fields))
	}
	s, err := l.entry(row)
	if err != nil {
		return err
	}
	key, err := decodeKey(row.Fields[1])
	if err != nil {
		return err
	}

	val, err := literal.Parse(row.Fields[2])
	if err != nil {
		return err
	}
	entries, err := literal.IntDict(val)
	if err != nil {
		return fmt.Errorf("path table: %w", err)
	}

	r := s.response(key)
	for _, e := range entries {
		elems, err := literal.Elements(e.Value)
		if err != nil {
			return fmt.Errorf("injection %d: %w", e.Key, err)
		}
		for _, el := range elems {
			parts, err := literal.Elements(el)
			if err != nil || len(parts) != 3 {
				return fmt.Errorf("injection %d: expected (arrival, hash, direct)", e.Key)
			}
			arr, err := literal.Int(parts[0])
			if err != nil {
				return fmt.Errorf("injection %d: arrival: %w", e.Key, err)
			}
			hash, err := literal.String(parts[1])
			if err != nil {
				return fmt.Errorf("injection %d: hash: %w", e.Key, err)
			}
			direct, err := literal.Bool(parts[2])
			if err != nil {
				return fmt.Errorf("injection %d: direct flag: %w", e.Key, err)
			}
			r.paths[e.Key] = insertPath(r.paths[e.Key], PathHit{Arrival: arr, Hash: hash, Direct: direct})
		}
	}
	return nil
}

// polygonRow decodes `name; [(x, y), ...]`.
func (l *loader) polygonRow(row literal.Row) error {
	if len(row.Fields) != 2 {
		return row.Errorf("expected 2 fields, got %d", len(row.Fields))
	}
	s, err := l.entry(row)
	if err != nil {
		return err
	}
	val, err := literal.Parse(row.Fields[1])
	if err != nil {
		return err
	}
	poly, err := decodePolygon(val)
	if err != nil {
		return fmt.Errorf("polygon: %w", err)
	}
	s.polygon = poly
	return nil
}

// readOptional scans path when it exists.
func readOptional(path string, fn func(literal.Row) error, logger *slog.Logger) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debug("Optional table not found", "file", path)
		return nil
	}
	_, err := literal.ReadRows(path, fn)
	return err
}

// link builds the points and resolves parents. Parents are resolved
// before their children so that inherited data propagates down a chain.
func (l *loader) link(logger *slog.Logger) ([]*Point, error) {
	points := make([]*Point, len(l.entries))
	for i, s := range l.entries {
		points[i] = NewPoint(s.name, s.river, s.distance, s.polygon, logger, s.responses...)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(points))

	var resolve func(i int) error
	resolve = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return l.entries[i].row.Errorf("parent cycle through point %q", l.entries[i].name)
		}
		state[i] = visiting

		s := l.entries[i]
		if s.parentName != "" {
			j, ok := l.index[s.parentName]
			if !ok {
				return s.row.Errorf("unknown parent point %q", s.parentName)
			}
			if err := resolve(j); err != nil {
				return err
			}
			points[i].inherit(points[j])
		}

		state[i] = done
		return nil
	}

	for i := range points {
		if err := resolve(i); err != nil {
			return nil, err
		}
	}
	return points, nil
}

// Load reads the point tables of dataDir and links parents. The link and
// tide tables are required, the path and polygon tables are optional.
func Load(dataDir string, rivers *river.Rivers, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rivers == nil {
		rivers = river.NewRivers()
	}

	l := &loader{rivers: rivers, index: map[string]int{}}

	if _, err := literal.ReadRows(filepath.Join(dataDir, LinkFile), l.linkRow); err != nil {
		return nil, fmt.Errorf("failed to load overflow points: %w", err)
	}
	info, err := literal.ReadRows(filepath.Join(dataDir, TideFile), l.tideRow)
	if err != nil {
		return nil, fmt.Errorf("failed to load tide responses: %w", err)
	}
	if err := readOptional(filepath.Join(dataDir, PathFile), l.pathRow, logger); err != nil {
		return nil, fmt.Errorf("failed to load paths: %w", err)
	}
	if err := readOptional(filepath.Join(dataDir, PolygonFile), l.polygonRow, logger); err != nil {
		return nil, fmt.Errorf("failed to load polygons: %w", err)
	}

	points, err := l.link(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to link overflow points: %w", err)
	}

	reg := newRegistry(dataDir, points, info, logger)

	storePath := filepath.Join(dataDir, PathsFile)
	if _, err := os.Stat(storePath); err == nil {
		store, err := LoadPathStore(storePath)
		if err != nil {
			return nil, err
		}
		reg.SetPathStore(store)
	}

	logger.Info("Overflow points loaded", "data_dir", dataDir, "points", len(points))
	return reg, nil
}

package station

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/geo/r2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/secretyv/ASur/pkg/tide"
)

// PathsFile is the optional path store looked up in a data directory.
const PathsFile = "paths.msgpack"

// PathPoint is one sample of a particle path: seconds since injection,
// position and concentration.
type PathPoint struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	C float64 `json:"c"`
}

// PathLength returns the travelled length of a path.
func PathLength(path []PathPoint) float64 {
	var l float64
	for i := 1; i < len(path); i++ {
		a := r2.Point{X: path[i-1].X, Y: path[i-1].Y}
		b := r2.Point{X: path[i].X, Y: path[i].Y}
		l += b.Sub(a).Norm()
	}
	return l
}

// PathStore resolves path hashes into particle paths.
type PathStore interface {
	Path(hash string) ([]PathPoint, bool)
}

// MemoryPathStore is a PathStore backed by a map.
type MemoryPathStore map[string][]PathPoint

// Path implements PathStore.
func (s MemoryPathStore) Path(hash string) ([]PathPoint, bool) {
	p, ok := s[hash]
	return p, ok
}

// ReadPathStore decodes a msgpack encoded map from hash to path.
func ReadPathStore(r io.Reader) (MemoryPathStore, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")

	store := MemoryPathStore{}
	if err := dec.Decode(&store); err != nil {
		return nil, fmt.Errorf("failed to decode path store: %w", err)
	}
	return store, nil
}

// WritePathStore encodes paths in the format read by ReadPathStore.
func WritePathStore(w io.Writer, paths map[string][]PathPoint) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	return enc.Encode(paths)
}

// LoadPathStore reads a path store file.
func LoadPathStore(path string) (MemoryPathStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open path store: %w", err)
	}
	defer f.Close()
	return ReadPathStore(f)
}

// Plume describes one particle path reaching the shore, or, for the first
// record of a point, the point itself.
type Plume struct {
	Dilution      float64     `json:"dilution"`
	Point         string      `json:"point"`
	Polygon       Polygon     `json:"polygon,omitempty"`
	Centre        r2.Point    `json:"centre"`
	Tide          CycleKey    `json:"tide"`
	InjectionTime time.Time   `json:"injection_time"`
	ContactTime   time.Time   `json:"contact_time"`
	Direct        bool        `json:"direct"`
	Hash          string      `json:"hash,omitempty"`
	Path          []PathPoint `json:"path,omitempty"`
}

// IsBoundary reports whether the record describes the point itself.
func (p Plume) IsBoundary() bool {
	return p.Hash == ""
}

func (p Plume) String() string {
	if p.IsBoundary() {
		return fmt.Sprintf("Station: %s; boundary", p.Point)
	}
	return fmt.Sprintf("Station: %s; tide: %s; t0: %s", p.Point, p.Tide.ID(), p.InjectionTime.Format(time.RFC3339))
}

// Plumes collects the distinct paths that reach the shore during a spill
// from start to end. The first record describes the point boundary, then
// one record follows per path hash, in the order paths are first met.
func (p *Point) Plumes(start, end time.Time, step time.Duration, tbl *tide.Table, cycleIDs []string, store PathStore) ([]Plume, error) {
	times, err := injectionTimes(start, end, step)
	if err != nil {
		return nil, fmt.Errorf("point %s: %w", p.name, err)
	}

	res := []Plume{{
		Dilution:      -1,
		Point:         p.name,
		Polygon:       p.polygon,
		Centre:        p.polygon.Centre(),
		Tide:          CycleKey{Duration: -1, Amplitude: -1},
		InjectionTime: start,
		ContactTime:   start,
	}}

	seen := make(map[string]bool)
	for _, r := range p.selectResponses(cycleIDs) {
		for _, at := range times {
			for _, dt := range r.TransitTimes() {
				tRiver := at.Add(dt)
				inj, err := tbl.NormalizedTimeIndex(tRiver)
				if err != nil {
					return nil, fmt.Errorf("point %s, cycle %s: %w", p.name, r.ID(), err)
				}

				for _, ph := range r.Paths(inj) {
					if seen[ph.Hash] {
						continue
					}
					contact := arrivalTime(tRiver, inj, ph.Arrival)
					if contact.Before(start) {
						continue
					}
					seen[ph.Hash] = true

					plume := Plume{
						Dilution:      dilutionAt(r.Hits(inj), ph.Arrival),
						Point:         p.name,
						Centre:        p.polygon.Centre(),
						Tide:          r.Key(),
						InjectionTime: at,
						ContactTime:   contact,
						Direct:        ph.Direct,
						Hash:          ph.Hash,
					}
					if store != nil {
						if path, ok := store.Path(ph.Hash); ok {
							plume.Path = path
						} else {
							p.logger.Debug("Path not in store", "point", p.name, "hash", ph.Hash)
						}
					}
					res = append(res, plume)
				}
			}
		}
	}
	return res, nil
}

func dilutionAt(hits []Hit, arrival int) float64 {
	for _, h := range hits {
		if h.Arrival == arrival {
			return h.Dilution
		}
	}
	return NoHit
}

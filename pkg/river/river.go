// Package river holds the river table: the flow velocities used to turn a
// distance to the shoreline into transit times.
package river

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/secretyv/ASur/pkg/literal"
)

// DefaultFile is the river table name looked up in a data directory.
const DefaultFile = "rivers.txt"

// River is a named set of flow velocities, in m/s. The order of the
// velocities is meaningful: each index is a distinct flow scenario.
type River struct {
	Name       string    `json:"name"`
	Velocities []float64 `json:"velocities"`
}

// TransitTimes returns distance/velocity for every velocity, in order.
func (r *River) TransitTimes(distance float64) []time.Duration {
	out := make([]time.Duration, len(r.Velocities))
	for i, v := range r.Velocities {
		out[i] = time.Duration(distance / v * float64(time.Second))
	}
	return out
}

// Dump renders the river as a line of the river table.
func (r *River) Dump() string {
	vs := make([]string, len(r.Velocities))
	for i, v := range r.Velocities {
		vs[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return r.Name + "; (" + strings.Join(vs, ", ") + ")"
}

// Rivers is the river table, keyed by name.
type Rivers struct {
	byName map[string]*River
}

// NewRivers builds a table from rivers. Later duplicates replace earlier ones.
func NewRivers(rivers ...*River) *Rivers {
	t := &Rivers{byName: make(map[string]*River, len(rivers))}
	for _, r := range rivers {
		t.byName[r.Name] = r
	}
	return t
}

// Names returns the river names, sorted.
func (t *Rivers) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the named river.
func (t *Rivers) Get(name string) (*River, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.byName[name]
	return r, ok
}

// Len returns the number of rivers.
func (t *Rivers) Len() int { return len(t.byName) }

// ParseRow decodes a `name; (v1, v2, ...)` row.
func ParseRow(row literal.Row) (*River, error) {
	if len(row.Fields) != 2 {
		return nil, row.Errorf("expected 2 fields, got %d", len(row.Fields))
	}
	if row.Fields[0] == "" {
		return nil, row.Errorf("empty river name")
	}
	val, err := literal.Parse(row.Fields[1])
	if err != nil {
		return nil, row.Wrap(err)
	}
	vs, err := literal.Floats(val)
	if err != nil {
		return nil, row.Errorf("velocities: %w", err)
	}
	for i, v := range vs {
		if v <= 0 {
			return nil, row.Errorf("velocity %d must be positive, got %g", i, v)
		}
	}
	return &River{Name: row.Fields[0], Velocities: vs}, nil
}

// Parse reads a river table.
func Parse(r io.Reader, name string) (*Rivers, error) {
	t := NewRivers()
	_, err := literal.ScanRows(r, name, func(row literal.Row) error {
		rv, err := ParseRow(row)
		if err != nil {
			return err
		}
		t.byName[rv.Name] = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Load reads rivers.txt from dataDir.
func Load(dataDir string, logger *slog.Logger) (*Rivers, error) {
	if logger == nil {
		logger = slog.Default()
	}

	t := NewRivers()
	path := filepath.Join(dataDir, DefaultFile)
	_, err := literal.ReadRows(path, func(row literal.Row) error {
		rv, err := ParseRow(row)
		if err != nil {
			return err
		}
		t.byName[rv.Name] = rv
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load rivers: %w", err)
	}

	logger.Debug("Rivers loaded", "file", path, "count", t.Len())
	return t, nil
}

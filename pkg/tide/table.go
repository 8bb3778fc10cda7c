// Package tide holds the high/low water table of a tide gauge station and
// the tide-phase queries built on it.
package tide

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	// SlotsHighToLow is the number of normalized slots between a high water
	// and the following low water.
	SlotsHighToLow = 31
	// SlotsLowToHigh is the number of normalized slots between a low water
	// and the following high water.
	SlotsLowToHigh = 19
	// SlotDuration is the nominal length of one normalized slot.
	SlotDuration = 900 * time.Second
)

// ErrOutOfRange is returned when a query falls outside the span of the
// loaded table.
var ErrOutOfRange = errors.New("time outside tide table span")

// Record is one high or low water event.
type Record struct {
	Time  time.Time `json:"time"`
	Level float64   `json:"level"`
}

// Table is a time-ordered sequence of alternating high and low water
// records. It is read-only once built and safe for concurrent use.
type Table struct {
	records []Record
}

// New builds a table from records in any order. Exact duplicates are
// dropped; two records at the same instant with different levels are an
// error.
func New(records []Record) (*Table, error) {
	recs := make([]Record, len(records))
	for i, r := range records {
		recs[i] = Record{Time: r.Time.UTC(), Level: r.Level}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time.Before(recs[j].Time) })

	out := recs[:0]
	for _, r := range recs {
		if n := len(out); n > 0 && out[n-1].Time.Equal(r.Time) {
			if out[n-1].Level != r.Level {
				return nil, fmt.Errorf("conflicting tide records at %s: %f and %f",
					r.Time.Format(time.RFC3339), out[n-1].Level, r.Level)
			}
			continue
		}
		out = append(out, r)
	}
	return &Table{records: out}, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Records returns a copy of the records.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Span returns the first and last record instants.
func (t *Table) Span() (time.Time, time.Time) {
	if len(t.records) == 0 {
		return time.Time{}, time.Time{}
	}
	return t.records[0].Time, t.records[len(t.records)-1].Time
}

// countAtOrBefore returns the number of records with Time <= at.
func (t *Table) countAtOrBefore(at time.Time) int {
	return sort.Search(len(t.records), func(i int) bool { return t.records[i].Time.After(at) })
}

// WaterLevel linearly interpolates the water level at the given instant.
func (t *Table) WaterLevel(at time.Time) (float64, error) {
	i := sort.Search(len(t.records), func(i int) bool { return !t.records[i].Time.Before(at) })
	if i < len(t.records) && t.records[i].Time.Equal(at) {
		return t.records[i].Level, nil
	}
	if i == 0 || i == len(t.records) {
		return 0, fmt.Errorf("water level at %s: %w", at.UTC().Format(time.RFC3339), ErrOutOfRange)
	}

	r0, r1 := t.records[i-1], t.records[i]
	a := at.Sub(r0.Time).Seconds() / r1.Time.Sub(r0.Time).Seconds()
	return r0.Level + a*(r1.Level-r0.Level), nil
}

func (t *Table) previous(at time.Time, high bool) (Record, error) {
	i := t.countAtOrBefore(at)
	if i < 2 {
		return Record{}, fmt.Errorf("previous %s at %s: %w", kind(high), at.UTC().Format(time.RFC3339), ErrOutOfRange)
	}
	a, b := t.records[i-1], t.records[i-2]
	if (a.Level > b.Level) == high {
		return a, nil
	}
	return b, nil
}

func (t *Table) next(at time.Time, high bool) (Record, error) {
	i := t.countAtOrBefore(at)
	if i+1 >= len(t.records) {
		return Record{}, fmt.Errorf("next %s after %s: %w", kind(high), at.UTC().Format(time.RFC3339), ErrOutOfRange)
	}
	a, b := t.records[i], t.records[i+1]
	if (a.Level > b.Level) == high {
		return a, nil
	}
	return b, nil
}

func kind(high bool) string {
	if high {
		return "high water"
	}
	return "low water"
}

// PreviousHighWater returns the high water at or before the instant.
func (t *Table) PreviousHighWater(at time.Time) (Record, error) { return t.previous(at, true) }

// PreviousLowWater returns the low water at or before the instant.
func (t *Table) PreviousLowWater(at time.Time) (Record, error) { return t.previous(at, false) }

// NextHighWater returns the first high water strictly after the instant.
func (t *Table) NextHighWater(at time.Time) (Record, error) { return t.next(at, true) }

// NextLowWater returns the first low water strictly after the instant.
func (t *Table) NextLowWater(at time.Time) (Record, error) { return t.next(at, false) }

// nint rounds a non-negative value half up.
func nint(d float64) int {
	return int(d + 0.5)
}

// NormalizedTimeIndex maps an instant onto the tide-phase clock. The real
// high-to-low half cycle holding the instant is cut into SlotsHighToLow
// slots and the low-to-high half cycle into SlotsLowToHigh slots; the
// index counts slots from the previous high water.
func (t *Table) NormalizedTimeIndex(at time.Time) (int, error) {
	hw0, err := t.PreviousHighWater(at)
	if err != nil {
		return 0, err
	}
	lw, err := t.NextLowWater(hw0.Time)
	if err != nil {
		return 0, err
	}

	if !at.After(lw.Time) {
		stp := lw.Time.Sub(hw0.Time).Seconds() / SlotsHighToLow
		return nint(at.Sub(hw0.Time).Seconds() / stp), nil
	}

	hw1, err := t.NextHighWater(hw0.Time)
	if err != nil {
		return 0, err
	}
	stp := hw1.Time.Sub(lw.Time).Seconds() / SlotsLowToHigh
	return SlotsHighToLow + nint(at.Sub(lw.Time).Seconds()/stp), nil
}

// NormalizedTime returns the normalized index as a duration from the
// previous high water.
func (t *Table) NormalizedTime(at time.Time) (time.Duration, error) {
	idx, err := t.NormalizedTimeIndex(at)
	if err != nil {
		return 0, err
	}
	return time.Duration(idx) * SlotDuration, nil
}

// Signal samples the water level every step from start, and always ends
// with a sample at exactly end.
func (t *Table) Signal(start, end time.Time, step time.Duration) ([]Record, error) {
	if step <= 0 {
		return nil, fmt.Errorf("invalid signal step %s", step)
	}

	var res []Record
	for at := start; at.Before(end); at = at.Add(step) {
		wl, err := t.WaterLevel(at)
		if err != nil {
			return nil, err
		}
		res = append(res, Record{Time: at.UTC(), Level: wl})
	}

	wl, err := t.WaterLevel(end)
	if err != nil {
		return nil, err
	}
	return append(res, Record{Time: end.UTC(), Level: wl}), nil
}

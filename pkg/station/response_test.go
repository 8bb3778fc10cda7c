package station

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretyv/ASur/pkg/river"
	"github.com/secretyv/ASur/pkg/tide"
)

var t0 = time.Date(2016, 6, 1, 5, 0, 0, 0, time.UTC)

var key1 = CycleKey{Duration: 44700, Amplitude: 1.2}

// regularTable has a high water at first and half cycles of exactly 31 and
// 19 slots, so that the normalized index advances once every 900 s.
func regularTable(first time.Time) *tide.Table {
	return tide.Synthetic(first, 4, tide.SlotsHighToLow*tide.SlotDuration, tide.SlotsLowToHigh*tide.SlotDuration, 4.0, 0.5)
}

func TestCycleKey(t *testing.T) {
	assert.Equal(t, "dh=1.20, dt=12.42", key1.ID())

	k2 := CycleKey{Duration: 40000, Amplitude: 2.5}
	k3 := CycleKey{Duration: 45000, Amplitude: 2.5}
	assert.True(t, key1.Less(k2))
	assert.True(t, k2.Less(k3))
	assert.False(t, k3.Less(k2))
	assert.False(t, key1.Less(key1))
}

func TestTransitTimes(t *testing.T) {
	r := NewTideResponse(nil, 0, key1, nil, nil)
	assert.Equal(t, []time.Duration{0}, r.TransitTimes())

	rv := &river.River{Name: "R1", Velocities: []float64{0.5, 1.0}}
	r = NewTideResponse(rv, 1000, key1, nil, nil)
	assert.Equal(t, []time.Duration{2000 * time.Second, 1000 * time.Second}, r.TransitTimes())
}

func TestHitsForOneInjection(t *testing.T) {
	tbl := regularTable(t0)
	r := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.01}}, 1: {{4, 0.2}, {6, 0.3}}}, nil)

	g, err := r.HitsForOneInjection(t0, t0, tbl)
	require.NoError(t, err)
	assert.Equal(t, HitGrid{{NoHit, NoHit, 0.01}}, g)

	// Injected one slot later: arrivals are relative to the injection phase
	g, err = r.HitsForOneInjection(t0.Add(tide.SlotDuration), t0, tbl)
	require.NoError(t, err)
	assert.Equal(t, HitGrid{{NoHit, NoHit, NoHit, NoHit, 0.2, NoHit, 0.3}}, g)

	// No entry for the phase leaves the row unset
	g, err = r.HitsForOneInjection(t0.Add(5*tide.SlotDuration), t0, tbl)
	require.NoError(t, err)
	require.Len(t, g, 1)
	assert.Empty(t, g[0])
}

func TestHitsForOneInjectionDropsEarlyArrivals(t *testing.T) {
	tbl := regularTable(t0)
	r := NewTideResponse(nil, 0, key1, HitTable{3: {{1, 0.4}, {5, 0.2}}}, nil)

	// Injected at phase 3, arrival 1 lies two slots before the reference
	g, err := r.HitsForOneInjection(t0.Add(3*tide.SlotDuration), t0.Add(3*tide.SlotDuration), tbl)
	require.NoError(t, err)
	assert.Equal(t, HitGrid{{NoHit, NoHit, 0.2}}, g)
}

func TestHitsForOneInjectionOutOfRange(t *testing.T) {
	tbl := regularTable(t0)
	r := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.01}}}, nil)

	_, err := r.HitsForOneInjection(t0.Add(-30*24*time.Hour), t0, tbl)
	assert.ErrorIs(t, err, tide.ErrOutOfRange)
}

func TestInjectionTimes(t *testing.T) {
	times, err := injectionTimes(t0, t0.Add(time.Hour), 900*time.Second)
	require.NoError(t, err)
	require.Len(t, times, 5)
	assert.Equal(t, t0.Add(45*time.Minute), times[3])
	assert.Equal(t, t0.Add(time.Hour), times[4])

	// The step is adjusted to divide the window evenly
	times, err = injectionTimes(t0, t0.Add(time.Hour), 25*time.Minute)
	require.NoError(t, err)
	require.Len(t, times, 3)
	assert.Equal(t, t0.Add(30*time.Minute), times[1])

	// At least one step
	times, err = injectionTimes(t0, t0.Add(time.Minute), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{t0, t0.Add(time.Minute)}, times)

	_, err = injectionTimes(t0, t0, time.Minute)
	assert.Error(t, err)
	_, err = injectionTimes(t0, t0.Add(time.Hour), 0)
	assert.Error(t, err)
}

func TestHitsForSpillWindowShorePoint(t *testing.T) {
	tbl := regularTable(t0)
	r := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.01}}}, nil)

	g, err := r.HitsForSpillWindow(t0, t0.Add(time.Hour), 900*time.Second, tbl, false)
	require.NoError(t, err)
	assert.Equal(t, HitGrid{{NoHit, NoHit, 0.01}}, g)
}

func TestHitsForSpillWindowRiver(t *testing.T) {
	// High water 1000 s after the spill starts: with a 1000 s transit the
	// plume enters the estuary exactly at high water
	tbl := regularTable(t0.Add(1000 * time.Second))
	rv := &river.River{Name: "R1", Velocities: []float64{0.5, 1.0}}
	r := NewTideResponse(rv, 1000, key1, HitTable{0: {{2, 0.01}}}, nil)

	g, err := r.HitsForSpillWindow(t0, t0.Add(time.Hour), 900*time.Second, tbl, false)
	require.NoError(t, err)
	require.Len(t, g, 2)

	assert.Empty(t, g[0], "2000 s transit never enters at phase 0")
	// t0 + 1000 s + 2 slots = t0 + 2800 s, nearest slot 3
	assert.Equal(t, []float64{NoHit, NoHit, NoHit, 0.01}, g[1])

	merged, err := r.HitsForSpillWindow(t0, t0.Add(time.Hour), 900*time.Second, tbl, true)
	require.NoError(t, err)
	assert.Equal(t, HitGrid{{NoHit, NoHit, NoHit, 0.01}}, merged)
}

func TestMergeTideData(t *testing.T) {
	a := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.01}, {5, 0.2}}}, nil)
	b := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.05}, {3, 0.1}}, 7: {{9, 0.3}}}, nil)

	a.MergeTideData(b)
	assert.Equal(t, []Hit{{2, 0.05}, {3, 0.1}, {5, 0.2}}, a.Hits(0))
	assert.Equal(t, []Hit{{9, 0.3}}, a.Hits(7))
	assert.Nil(t, a.Hits(1))
}

func TestMergePathData(t *testing.T) {
	a := NewTideResponse(nil, 0, key1, nil, PathTable{0: {{Arrival: 4, Hash: "b"}}})
	b := NewTideResponse(nil, 0, key1, nil, PathTable{
		0: {{Arrival: 2, Hash: "a", Direct: true}, {Arrival: 4, Hash: "b"}},
		3: {{Arrival: 5, Hash: "c"}},
	})

	a.MergePathData(b)
	assert.Equal(t, []PathHit{{Arrival: 2, Hash: "a", Direct: true}, {Arrival: 4, Hash: "b"}}, a.Paths(0))
	assert.Equal(t, []PathHit{{Arrival: 5, Hash: "c"}}, a.Paths(3))
}

func TestRebind(t *testing.T) {
	rv := &river.River{Name: "R1", Velocities: []float64{1.0}}
	a := NewTideResponse(nil, 0, key1, HitTable{0: {{2, 0.01}}}, nil)

	b := a.rebind(rv, 500)
	assert.Equal(t, key1, b.Key())
	assert.Equal(t, []time.Duration{500 * time.Second}, b.TransitTimes())

	b.hits[0][0].Dilution = 0.9
	assert.Equal(t, 0.01, a.Hits(0)[0].Dilution)
}

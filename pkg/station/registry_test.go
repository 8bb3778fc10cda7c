package station

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secretyv/ASur/pkg/overflow"
)

func TestRegistryOverflowData(t *testing.T) {
	reg := loadDataSet(t)
	tbl := regularTable(t0)

	events := []overflow.Overflow{
		{Point: "P0", Start: t0, End: t0.Add(time.Hour)},
		{Point: "P9", Start: t0, End: t0.Add(time.Hour)},
	}

	res, err := reg.OverflowData(tbl, 900*time.Second, events, false)
	require.NoError(t, err)
	require.Len(t, res, 1, "unknown points are skipped")

	pe := res[0]
	assert.Equal(t, "P0", pe.Point)
	assert.Equal(t, events[0], pe.Overflow)
	require.Len(t, pe.Windows, 1)
	require.Len(t, pe.Windows[0], 1)
	require.Len(t, pe.Windows[0][0], 1)
	assert.Equal(t, t0.Add(2*900*time.Second), pe.Windows[0][0][0].Start)
	assert.Equal(t, 0.01, pe.Windows[0][0][0].Value)
}

func TestRegistryExposureRiverPoint(t *testing.T) {
	reg := loadDataSet(t)
	tbl := regularTable(t0)

	pe, err := reg.Exposure(tbl, 900*time.Second, overflow.Overflow{Point: "G1", Start: t0, End: t0.Add(time.Hour)}, false)
	require.NoError(t, err)
	assert.Len(t, pe.Windows, 2, "one row per river velocity")

	merged, err := reg.Exposure(tbl, 900*time.Second, overflow.Overflow{Point: "G1", Start: t0, End: t0.Add(time.Hour)}, true)
	require.NoError(t, err)
	assert.Len(t, merged.Windows, 1)
}

func TestRegistryExposureUnknownPoint(t *testing.T) {
	reg := loadDataSet(t)

	_, err := reg.Exposure(regularTable(t0), 900*time.Second, overflow.Overflow{Point: "P9", Start: t0, End: t0.Add(time.Hour)}, false)
	assert.ErrorIs(t, err, ErrUnknownPoint)
}

func TestRegistryOverflowPlumes(t *testing.T) {
	dir := writeDataSet(t, map[string]string{
		LinkFile:    linkTable,
		TideFile:    tideTable,
		PathFile:    pathTable,
		PolygonFile: polygonTable,
	})

	f, err := os.Create(filepath.Join(dir, PathsFile))
	require.NoError(t, err)
	require.NoError(t, WritePathStore(f, map[string][]PathPoint{
		"abc": {{T: 0, X: 1, Y: 1, C: 1}, {T: 900, X: 2, Y: 1, C: 0.5}},
	}))
	require.NoError(t, f.Close())

	reg, err := Load(dir, testRivers, quietLogger)
	require.NoError(t, err)

	events := []overflow.Overflow{
		{Point: "P0", Start: t0, End: t0.Add(time.Hour)},
		{Point: "P9", Start: t0, End: t0.Add(time.Hour)},
	}
	plumes, err := reg.OverflowPlumes(regularTable(t0), 900*time.Second, events)
	require.NoError(t, err)
	require.Len(t, plumes, 3)

	assert.True(t, plumes[0].IsBoundary())
	assert.Equal(t, "abc", plumes[1].Hash)
	assert.Equal(t, 0.01, plumes[1].Dilution)
	assert.Len(t, plumes[1].Path, 2)
	assert.InDelta(t, 1.0, PathLength(plumes[1].Path), 1e-12)

	assert.Equal(t, "12345", plumes[2].Hash)
	assert.Equal(t, NoHit, plumes[2].Dilution)
	assert.Nil(t, plumes[2].Path)
}

func TestRegistryInfoIsCopied(t *testing.T) {
	reg := loadDataSet(t)
	info := reg.Info()
	info[0] = "changed"
	assert.Equal(t, "Simulation v3.1", reg.Info()[0])
}

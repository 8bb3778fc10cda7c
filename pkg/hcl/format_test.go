package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatHCL, DetectFormat("batch.hcl", []byte(`{}`)))
	assert.Equal(t, FormatJSON, DetectFormat("batch.JSON", []byte(`step = "5m"`)))
	assert.Equal(t, FormatJSON, DetectFormat("batch", []byte("  {\"step\": \"5m\"}")))
	assert.Equal(t, FormatHCL, DetectFormat("batch", []byte(`step = "5m"`)))
	assert.Equal(t, FormatJSON, DetectFormat("batch", nil))
}

func TestHCLtoJSONEquivalence(t *testing.T) {
	fromHCL, err := LoadScenario("testdata/scenario.hcl")
	require.NoError(t, err)

	fromJSON, err := LoadScenario("testdata/scenario.json")
	require.NoError(t, err)

	assert.Equal(t, fromHCL.Step, fromJSON.Step)
	assert.Equal(t, fromHCL.MergeTransitTimes, fromJSON.MergeTransitTimes)
	assert.Equal(t, fromHCL.Overflows, fromJSON.Overflows)
	assert.Empty(t, fromJSON.Labels)
}

func TestLoadScenarioWithoutExtension(t *testing.T) {
	content, err := os.ReadFile("testdata/scenario.hcl")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "batch")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Len(t, scenario.Overflows, 2)
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario("testdata/nowhere.hcl")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"step": "soon"}`), 0o644))
	_, err = LoadScenario(path)
	assert.ErrorContains(t, err, "failed to parse step")
}

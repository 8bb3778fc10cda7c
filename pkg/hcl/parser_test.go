package hcl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	hclContent := `
	# Spill batch
	step = "10m"
	merge_transit_times = true

	overflow "morning" {
		point       = "BBE-MOU-003"
		start       = timestamp("2016-06-01T05:00:00Z")
		end         = timestamp("2016-06-01T07:00:00Z")
		tide_cycles = ["dh=4.20, dt=12.42", "dh=2.10, dt=12.42"]
	}

	overflow "evening" {
		point = "BBE-MOU-004"
		start = timestamp("2016-06-01T18:00:00-04:00")
		end   = "2016-06-01T19:00:00-04:00"
	}
	`

	scenario, err := ParseScenario(hclContent)
	require.NoError(t, err)
	require.NotNil(t, scenario)

	assert.Equal(t, 10*time.Minute, scenario.Step)
	assert.True(t, scenario.MergeTransitTimes)
	assert.Equal(t, []string{"morning", "evening"}, scenario.Labels)

	require.Len(t, scenario.Overflows, 2)

	o := scenario.Overflows[0]
	assert.Equal(t, "BBE-MOU-003", o.Point)
	assert.Equal(t, time.Date(2016, 6, 1, 5, 0, 0, 0, time.UTC), o.Start)
	assert.Equal(t, time.Date(2016, 6, 1, 7, 0, 0, 0, time.UTC), o.End)
	assert.Equal(t, []string{"dh=4.20, dt=12.42", "dh=2.10, dt=12.42"}, o.TideCycles)

	// Offsets are normalized to UTC
	o = scenario.Overflows[1]
	assert.Equal(t, time.Date(2016, 6, 1, 22, 0, 0, 0, time.UTC), o.Start)
	assert.Equal(t, time.UTC, o.Start.Location())
	assert.Equal(t, time.Date(2016, 6, 1, 23, 0, 0, 0, time.UTC), o.End)
	assert.Empty(t, o.TideCycles)
}

func TestParseScenarioDefaults(t *testing.T) {
	scenario, err := ParseScenario(`
	overflow "o1" {
		point = "P0"
		start = "2016-06-01T05:00:00Z"
		end   = "2016-06-01T06:00:00Z"
	}
	`)
	require.NoError(t, err)
	assert.Equal(t, DefaultStep, scenario.Step)
	assert.False(t, scenario.MergeTransitTimes)
	assert.Len(t, scenario.Overflows, 1)
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{
			name:    "syntax",
			content: `overflow "o1" {`,
			message: "failed to parse HCL",
		},
		{
			name: "missing point",
			content: `overflow "o1" {
				start = "2016-06-01T05:00:00Z"
				end   = "2016-06-01T06:00:00Z"
			}`,
			message: "failed to decode HCL body",
		},
		{
			name: "bad timestamp",
			content: `overflow "o1" {
				point = "P0"
				start = timestamp("yesterday")
				end   = "2016-06-01T06:00:00Z"
			}`,
			message: "failed to decode HCL body",
		},
		{
			name: "bad plain time",
			content: `overflow "o1" {
				point = "P0"
				start = "2016-06-01 05:00"
				end   = "2016-06-01T06:00:00Z"
			}`,
			message: "failed to parse start time",
		},
		{
			name:    "bad step",
			content: `step = "often"`,
			message: "failed to parse step",
		},
		{
			name:    "negative step",
			content: `step = "-5m"`,
			message: "step must be positive",
		},
		{
			name: "duplicate label",
			content: `
			overflow "o1" {
				point = "P0"
				start = "2016-06-01T05:00:00Z"
				end   = "2016-06-01T06:00:00Z"
			}
			overflow "o1" {
				point = "P1"
				start = "2016-06-01T05:00:00Z"
				end   = "2016-06-01T06:00:00Z"
			}`,
			message: "duplicate overflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(tt.content)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestIsHCL(t *testing.T) {
	// Valid HCL
	validHCL := []byte(`
		step = "5m"
		overflow "o1" {
			point = "P0"
		}
	`)
	assert.True(t, IsHCL(validHCL))

	// Valid JSON (invalid HCL)
	validJSON := []byte(`{"step": "5m"}`)
	assert.False(t, IsHCL(validJSON))
}

package hcl

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/asur.hcl")
	require.NoError(t, err)

	assert.Equal(t, "/srv/asur/data", cfg.DataDir)
	assert.Equal(t, "tide_3248.txt", cfg.TideFile)
	assert.Equal(t, 15*time.Minute, cfg.Step)
	assert.True(t, cfg.MergeTransitTimes)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	// Unset fields keep their defaults
	assert.Equal(t, "temporal:7233", cfg.Temporal.Address)
	assert.Equal(t, "default", cfg.Temporal.Namespace)
	assert.Equal(t, "asur", cfg.Temporal.TaskQueue)
}

func TestParseConfigEmpty(t *testing.T) {
	cfg, err := ParseConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"unknown attribute", `colour = "blue"`, "failed to decode HCL body"},
		{"bad step", `step = "later"`, "failed to parse step"},
		{"bad level", `log_level = "loud"`, "unknown log level"},
		{"syntax", `temporal {`, "failed to parse HCL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig(tt.content)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

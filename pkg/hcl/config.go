package hcl

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// HCLConfig represents the HCL run configuration structure
type HCLConfig struct {
	DataDir           *string      `hcl:"data_dir,optional"`
	TideFile          *string      `hcl:"tide_file,optional"`
	Step              *string      `hcl:"step,optional"`
	MergeTransitTimes *bool        `hcl:"merge_transit_times,optional"`
	LogLevel          *string      `hcl:"log_level,optional"`
	Temporal          *HCLTemporal `hcl:"temporal,block"`
}

// HCLTemporal represents the temporal block of the run configuration
type HCLTemporal struct {
	Address   *string `hcl:"address,optional"`
	Namespace *string `hcl:"namespace,optional"`
	TaskQueue *string `hcl:"task_queue,optional"`
}

// TemporalConfig locates the Temporal service and task queue.
type TemporalConfig struct {
	Address   string
	Namespace string
	TaskQueue string
}

// Config is the run configuration shared by the commands.
type Config struct {
	DataDir           string
	TideFile          string
	Step              time.Duration
	MergeTransitTimes bool
	LogLevel          slog.Level
	Temporal          TemporalConfig
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		DataDir:  "data",
		Step:     DefaultStep,
		LogLevel: slog.LevelInfo,
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: "asur-task-queue",
		},
	}
}

// ParseLogLevel maps debug, info, warn and error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// ParseConfig parses HCL content over the defaults
func ParseConfig(hclContent string) (Config, error) {
	cfg := DefaultConfig()

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL([]byte(hclContent), "asur.hcl")
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	var hclConfig HCLConfig
	diags = gohcl.DecodeBody(file.Body, evalContext(), &hclConfig)
	if diags.HasErrors() {
		return cfg, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	if hclConfig.DataDir != nil {
		cfg.DataDir = *hclConfig.DataDir
	}
	if hclConfig.TideFile != nil {
		cfg.TideFile = *hclConfig.TideFile
	}
	if hclConfig.Step != nil {
		step, err := time.ParseDuration(*hclConfig.Step)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse step: %w", err)
		}
		if step <= 0 {
			return cfg, fmt.Errorf("step must be positive, got %s", step)
		}
		cfg.Step = step
	}
	if hclConfig.MergeTransitTimes != nil {
		cfg.MergeTransitTimes = *hclConfig.MergeTransitTimes
	}
	if hclConfig.LogLevel != nil {
		level, err := ParseLogLevel(*hclConfig.LogLevel)
		if err != nil {
			return cfg, err
		}
		cfg.LogLevel = level
	}

	if t := hclConfig.Temporal; t != nil {
		if t.Address != nil {
			cfg.Temporal.Address = *t.Address
		}
		if t.Namespace != nil {
			cfg.Temporal.Namespace = *t.Namespace
		}
		if t.TaskQueue != nil {
			cfg.Temporal.TaskQueue = *t.TaskQueue
		}
	}

	return cfg, nil
}

// LoadConfig reads a run configuration file
func LoadConfig(path string) (Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read file %s: %w", path, err)
	}
	cfg, err := ParseConfig(string(content))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

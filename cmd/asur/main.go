package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"

	"github.com/secretyv/ASur/pkg/hcl"
	"github.com/secretyv/ASur/pkg/model"
	"github.com/secretyv/ASur/pkg/temporal"
)

// Operation modes
const (
	ModeExposure = "exposure"
	ModePlumes   = "plumes"
	ModeSummary  = "summary"
	ModePoints   = "points"
	ModeTide     = "tide"
)

func main() {
	var (
		configPath   string
		dataDir      string
		tideFile     string
		scenarioPath string
		mode         string
		format       string
		logLevel     string
		step         time.Duration
		merge        bool
		remote       bool
	)

	flag.StringVar(&configPath, "config", "", "Path to an HCL run configuration")
	flag.StringVar(&dataDir, "data-dir", "", "Data set directory (overrides the configuration)")
	flag.StringVar(&tideFile, "tide-file", "", "Tide table, relative to the data directory unless absolute")
	flag.StringVar(&scenarioPath, "scenario", "", "Scenario file (HCL or JSON) or directory of HCL files")
	flag.StringVar(&mode, "mode", ModeExposure, "Operation mode: exposure, plumes, summary, points or tide")
	flag.StringVar(&format, "format", FormatJSON, "Output format: json or msgpack")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.DurationVar(&step, "step", 0, "Injection time step (overrides the scenario)")
	flag.BoolVar(&merge, "merge", false, "Merge the transit times of each point")
	flag.BoolVar(&remote, "remote", false, "Run the batch on the Temporal worker instead of locally")
	flag.Parse()

	cfg := hcl.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = hcl.LoadConfig(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if tideFile != "" {
		cfg.TideFile = tideFile
	}
	if logLevel != "" {
		level, err := hcl.ParseLogLevel(logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg.LogLevel = level
	}
	cfg.MergeTransitTimes = cfg.MergeTransitTimes || merge

	// Results go to stdout, logs to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	out, err := newEncoder(os.Stdout, format)
	if err != nil {
		logger.Error("Invalid output format", "error", err)
		os.Exit(1)
	}

	switch mode {
	case ModeExposure, ModePlumes, ModeSummary, ModePoints, ModeTide:
	default:
		logger.Error("Unknown mode", "mode", mode)
		flag.Usage()
		os.Exit(1)
	}

	var scenario *hcl.Scenario
	if mode != ModePoints {
		if scenarioPath == "" {
			logger.Error("Scenario parameter is required", "mode", mode)
			flag.Usage()
			os.Exit(1)
		}
		if scenario, err = hcl.LoadScenario(scenarioPath); err != nil {
			logger.Error("Failed to load scenario", "error", err)
			os.Exit(1)
		}
		if step > 0 {
			scenario.Step = step
		}
		scenario.MergeTransitTimes = scenario.MergeTransitTimes || cfg.MergeTransitTimes
		logger.Info("Loaded scenario", "path", scenarioPath, "overflows", len(scenario.Overflows), "step", scenario.Step)
	}

	if remote {
		if mode == ModePoints || mode == ModeTide {
			logger.Error("Mode is not available remotely", "mode", mode)
			os.Exit(1)
		}
		if err := runRemote(context.Background(), cfg, mode, scenario, out, logger); err != nil {
			logger.Error("Remote run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	m, err := model.Load(model.Config{DataDir: cfg.DataDir, TideFile: cfg.TideFile, Logger: logger})
	if err != nil {
		logger.Error("Failed to load data set", "error", err)
		os.Exit(1)
	}
	if err := runLocal(m, cfg, mode, scenario, out); err != nil {
		logger.Error("Run failed", "mode", mode, "error", err)
		os.Exit(1)
	}
}

// pointListing is the output of the points mode
type pointListing struct {
	Name       string   `json:"name"`
	TideCycles []string `json:"tide_cycles"`
}

func runLocal(m *model.Model, cfg hcl.Config, mode string, scenario *hcl.Scenario, out encoder) error {
	switch mode {
	case ModePoints:
		var listing []pointListing
		for _, name := range m.PointNames() {
			ids, err := m.PointTideCycleIDs(name)
			if err != nil {
				return err
			}
			listing = append(listing, pointListing{Name: name, TideCycles: ids})
		}
		return out.Encode(listing)

	case ModeTide:
		if len(scenario.Overflows) == 0 {
			return fmt.Errorf("tide mode needs at least one overflow")
		}
		start, end := scenarioSpan(scenario)
		records, err := m.TideSignal(start, end, cfg.Step)
		if err != nil {
			return err
		}
		return out.Encode(records)

	case ModePlumes:
		plumes, err := m.OverflowPlumes(scenario.Step, scenario.Overflows)
		if err != nil {
			return err
		}
		return out.Encode(temporal.PlumeResult{Plumes: plumes})
	}

	exposures, err := m.OverflowData(scenario.Step, scenario.Overflows, scenario.MergeTransitTimes)
	if err != nil {
		return err
	}
	if mode == ModeSummary {
		return out.Encode(model.Summaries(exposures))
	}
	result := temporal.ExposureResult{
		Exposures: exposures,
		Summaries: model.Summaries(exposures),
	}
	result.HorizonStart, result.HorizonEnd = model.Horizon(exposures)
	return out.Encode(result)
}

// scenarioSpan covers every event of the scenario
func scenarioSpan(scenario *hcl.Scenario) (time.Time, time.Time) {
	start, end := scenario.Overflows[0].Start, scenario.Overflows[0].End
	for _, o := range scenario.Overflows[1:] {
		if o.Start.Before(start) {
			start = o.Start
		}
		if o.End.After(end) {
			end = o.End
		}
	}
	return start, end
}

func runRemote(ctx context.Context, cfg hcl.Config, mode string, scenario *hcl.Scenario, out encoder, logger *slog.Logger) error {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    log.NewStructuredLogger(logger),
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	req := temporal.BatchRequest{
		Step:              scenario.Step,
		MergeTransitTimes: scenario.MergeTransitTimes,
		Overflows:         scenario.Overflows,
	}

	if mode == ModePlumes {
		options := client.StartWorkflowOptions{
			ID:        temporal.GeneratePlumeWorkflowID(),
			TaskQueue: cfg.Temporal.TaskQueue,
		}
		we, err := c.ExecuteWorkflow(ctx, options, temporal.PlumeBatchWorkflow, req)
		if err != nil {
			return fmt.Errorf("failed to start plume workflow: %w", err)
		}
		logger.Info("Started workflow", "workflow_id", we.GetID(), "run_id", we.GetRunID())

		var result temporal.PlumeResult
		if err := we.Get(ctx, &result); err != nil {
			return fmt.Errorf("plume workflow failed: %w", err)
		}
		return out.Encode(result)
	}

	options := client.StartWorkflowOptions{
		ID:        temporal.GenerateOverflowWorkflowID(),
		TaskQueue: cfg.Temporal.TaskQueue,
	}
	we, err := c.ExecuteWorkflow(ctx, options, temporal.OverflowBatchWorkflow, req)
	if err != nil {
		return fmt.Errorf("failed to start overflow workflow: %w", err)
	}
	logger.Info("Started workflow", "workflow_id", we.GetID(), "run_id", we.GetRunID())

	var result temporal.ExposureResult
	if err := we.Get(ctx, &result); err != nil {
		return fmt.Errorf("overflow workflow failed: %w", err)
	}
	for _, point := range result.Skipped {
		logger.Warn("Point skipped by the worker", "point", point)
	}
	if mode == ModeSummary {
		return out.Encode(result.Summaries)
	}
	return out.Encode(result)
}

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/secretyv/ASur/pkg/hcl"
	"github.com/secretyv/ASur/pkg/model"
	"github.com/secretyv/ASur/pkg/temporal"
)

func main() {
	var (
		configPath   = flag.String("config", "", "Path to an HCL run configuration")
		dataDir      = flag.String("data-dir", "", "Data set directory (overrides the configuration)")
		tideFile     = flag.String("tide-file", "", "Tide table, relative to the data directory unless absolute")
		temporalAddr = flag.String("temporal-addr", "", "Temporal server address")
		namespace    = flag.String("namespace", "", "Temporal namespace")
		taskQueue    = flag.String("task-queue", "", "Temporal task queue")
		logLevel     = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	cfg := hcl.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = hcl.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
	}
	overrides := map[*string]string{
		&cfg.DataDir:            *dataDir,
		&cfg.TideFile:           *tideFile,
		&cfg.Temporal.Address:   *temporalAddr,
		&cfg.Temporal.Namespace: *namespace,
		&cfg.Temporal.TaskQueue: *taskQueue,
	}
	for field, value := range overrides {
		if value != "" {
			*field = value
		}
	}
	if *logLevel != "" {
		level, err := hcl.ParseLogLevel(*logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg.LogLevel = level
	}

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("Starting ASur worker",
		"data_dir", cfg.DataDir,
		"temporal_addr", cfg.Temporal.Address,
		"namespace", cfg.Temporal.Namespace,
		"task_queue", cfg.Temporal.TaskQueue,
	)

	// The data set is loaded once and shared by all activities
	m, err := model.Load(model.Config{DataDir: cfg.DataDir, TideFile: cfg.TideFile, Logger: logger})
	if err != nil {
		logger.Error("Failed to load data set", "error", err)
		os.Exit(1)
	}

	// Create Temporal client
	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Logger:    log.NewStructuredLogger(logger),
	})
	if err != nil {
		logger.Error("Failed to create Temporal client", "error", err)
		os.Exit(1)
	}
	defer temporalClient.Close()

	activities := temporal.NewActivitiesImpl(logger, m)

	w := worker.New(temporalClient, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(temporal.OverflowBatchWorkflow)
	w.RegisterWorkflow(temporal.PlumeBatchWorkflow)

	// Register activities
	w.RegisterActivityWithOptions(activities.ComputeExposureActivity, activity.RegisterOptions{Name: temporal.ComputeExposureActivityName})
	w.RegisterActivityWithOptions(activities.ComputePlumesActivity, activity.RegisterOptions{Name: temporal.ComputePlumesActivityName})

	logger.Info("Starting Temporal worker", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ASur worker stopped")
}

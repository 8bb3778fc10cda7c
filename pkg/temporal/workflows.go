package temporal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/secretyv/ASur/pkg/model"
	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/station"
)

const (
	// Workflow IDs
	OverflowWorkflowIDPrefix = "overflow-"
	PlumeWorkflowIDPrefix    = "plume-"

	// Activity names
	ComputeExposureActivityName = "compute-exposure"
	ComputePlumesActivityName   = "compute-plumes"

	// Default values
	DefaultTaskQueue = "asur-task-queue"
)

func activityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		ScheduleToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
}

// validateBatch rejects the whole batch when any event is invalid.
func validateBatch(req BatchRequest) error {
	if req.Step <= 0 {
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("invalid time step %s", req.Step), InvalidBatchErrorType, nil)
	}
	if err := overflow.ValidateAll(req.Overflows); err != nil {
		return temporal.NewNonRetryableApplicationError(err.Error(), InvalidBatchErrorType, err)
	}
	return nil
}

func isUnknownPoint(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == UnknownPointErrorType
}

func exposureRequests(req BatchRequest) []ExposureRequest {
	out := make([]ExposureRequest, len(req.Overflows))
	for i, o := range req.Overflows {
		out[i] = ExposureRequest{Step: req.Step, MergeTransitTimes: req.MergeTransitTimes, Overflow: o}
	}
	return out
}

// OverflowBatchWorkflow computes the exposure windows of a batch of events.
// One activity runs per event; results are collected in request order.
func OverflowBatchWorkflow(ctx workflow.Context, req BatchRequest) (*ExposureResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting overflow batch workflow", "overflows", len(req.Overflows), "step", req.Step)

	if err := validateBatch(req); err != nil {
		logger.Error("Invalid batch", "error", err)
		return nil, err
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	requests := exposureRequests(req)
	futures := make([]workflow.Future, len(requests))
	for i, r := range requests {
		futures[i] = workflow.ExecuteActivity(ctx, ComputeExposureActivityName, r)
	}

	result := &ExposureResult{}
	for i, future := range futures {
		var pe station.PointExposure
		err := future.Get(ctx, &pe)
		if isUnknownPoint(err) {
			logger.Warn("Skipping point", "point", requests[i].Overflow.Point)
			result.Skipped = append(result.Skipped, requests[i].Overflow.Point)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to compute exposure of %s: %w", requests[i].Overflow, err)
		}
		result.Exposures = append(result.Exposures, pe)
	}

	result.Summaries = model.Summaries(result.Exposures)
	result.HorizonStart, result.HorizonEnd = model.Horizon(result.Exposures)

	logger.Info("Overflow batch completed", "exposures", len(result.Exposures), "skipped", len(result.Skipped))
	return result, nil
}

// PlumeBatchWorkflow collects the plume records of a batch of events
func PlumeBatchWorkflow(ctx workflow.Context, req BatchRequest) (*PlumeResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting plume batch workflow", "overflows", len(req.Overflows), "step", req.Step)

	if err := validateBatch(req); err != nil {
		logger.Error("Invalid batch", "error", err)
		return nil, err
	}

	ctx = workflow.WithActivityOptions(ctx, activityOptions())

	requests := exposureRequests(req)
	futures := make([]workflow.Future, len(requests))
	for i, r := range requests {
		futures[i] = workflow.ExecuteActivity(ctx, ComputePlumesActivityName, r)
	}

	result := &PlumeResult{}
	for i, future := range futures {
		var plumes []station.Plume
		err := future.Get(ctx, &plumes)
		if isUnknownPoint(err) {
			logger.Warn("Skipping point", "point", requests[i].Overflow.Point)
			result.Skipped = append(result.Skipped, requests[i].Overflow.Point)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to compute plumes of %s: %w", requests[i].Overflow, err)
		}
		result.Plumes = append(result.Plumes, plumes...)
	}

	logger.Info("Plume batch completed", "plumes", len(result.Plumes), "skipped", len(result.Skipped))
	return result, nil
}

// Utility functions for workflow IDs

// GenerateOverflowWorkflowID creates a workflow ID for an exposure batch
func GenerateOverflowWorkflowID() string {
	return OverflowWorkflowIDPrefix + uuid.NewString()
}

// GeneratePlumeWorkflowID creates a workflow ID for a plume batch
func GeneratePlumeWorkflowID() string {
	return PlumeWorkflowIDPrefix + uuid.NewString()
}

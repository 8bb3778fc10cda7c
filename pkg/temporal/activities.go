package temporal

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/station"
	"github.com/secretyv/ASur/pkg/tide"
)

// Engine answers single-event queries against a loaded data set.
// *model.Model implements it.
type Engine interface {
	Exposure(step time.Duration, o overflow.Overflow, mergeTransitTimes bool) (station.PointExposure, error)
	Plumes(step time.Duration, o overflow.Overflow) ([]station.Plume, error)
}

// Activities interface defines all the activities used by workflows
type Activities interface {
	ComputeExposureActivity(ctx context.Context, req ExposureRequest) (*station.PointExposure, error)
	ComputePlumesActivity(ctx context.Context, req ExposureRequest) ([]station.Plume, error)
}

// ActivitiesImpl implements the Activities interface
type ActivitiesImpl struct {
	logger *slog.Logger
	engine Engine
}

// NewActivitiesImpl creates a new activities implementation
func NewActivitiesImpl(logger *slog.Logger, engine Engine) *ActivitiesImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitiesImpl{
		logger: logger,
		engine: engine,
	}
}

// ComputeExposureActivity computes the exposure windows of one event
func (a *ActivitiesImpl) ComputeExposureActivity(ctx context.Context, req ExposureRequest) (*station.PointExposure, error) {
	a.logger.Info("Computing exposure", "point", req.Overflow.Point, "start", req.Overflow.Start, "end", req.Overflow.End)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pe, err := a.engine.Exposure(req.Step, req.Overflow, req.MergeTransitTimes)
	if err != nil {
		a.logger.Error("Failed to compute exposure", "point", req.Overflow.Point, "error", err)
		return nil, classify(err)
	}

	a.logger.Info("Successfully computed exposure", "point", req.Overflow.Point, "transit_times", len(pe.Windows))
	return &pe, nil
}

// ComputePlumesActivity collects the plume records of one event
func (a *ActivitiesImpl) ComputePlumesActivity(ctx context.Context, req ExposureRequest) ([]station.Plume, error) {
	a.logger.Info("Computing plumes", "point", req.Overflow.Point, "start", req.Overflow.Start, "end", req.Overflow.End)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plumes, err := a.engine.Plumes(req.Step, req.Overflow)
	if err != nil {
		a.logger.Error("Failed to compute plumes", "point", req.Overflow.Point, "error", err)
		return nil, classify(err)
	}

	a.logger.Info("Successfully computed plumes", "point", req.Overflow.Point, "plumes", len(plumes))
	return plumes, nil
}

// classify marks the errors a retry cannot fix as non-retryable.
func classify(err error) error {
	var inv *overflow.InvalidOverflowError
	switch {
	case errors.Is(err, station.ErrUnknownPoint):
		return temporal.NewNonRetryableApplicationError(err.Error(), UnknownPointErrorType, err)
	case errors.Is(err, tide.ErrOutOfRange):
		return temporal.NewNonRetryableApplicationError(err.Error(), OutOfRangeErrorType, err)
	case errors.As(err, &inv):
		return temporal.NewNonRetryableApplicationError(err.Error(), InvalidBatchErrorType, err)
	}
	return err
}

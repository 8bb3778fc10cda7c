package temporal

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/station"
	"github.com/secretyv/ASur/pkg/timeline"
)

var t0 = time.Date(2016, 6, 1, 5, 0, 0, 0, time.UTC)

// fakeEngine answers with one 900 s window starting 30 minutes after the
// spill for every known point.
type fakeEngine struct {
	points map[string]bool
	fail   error
}

func (e *fakeEngine) Exposure(step time.Duration, o overflow.Overflow, merge bool) (station.PointExposure, error) {
	if e.fail != nil {
		return station.PointExposure{}, e.fail
	}
	if !e.points[o.Point] {
		return station.PointExposure{}, fmt.Errorf("%q: %w", o.Point, station.ErrUnknownPoint)
	}
	start := o.Start.Add(30 * time.Minute)
	return station.PointExposure{
		Point:    o.Point,
		Overflow: o,
		Windows: [][]timeline.NumericTimeline{{{
			{Value: 0.1, Start: start, End: start.Add(15 * time.Minute)},
		}}},
	}, nil
}

func (e *fakeEngine) Plumes(step time.Duration, o overflow.Overflow) ([]station.Plume, error) {
	if !e.points[o.Point] {
		return nil, fmt.Errorf("%q: %w", o.Point, station.ErrUnknownPoint)
	}
	return []station.Plume{
		{Dilution: -1, Point: o.Point, InjectionTime: o.Start, ContactTime: o.Start},
		{Dilution: 0.1, Point: o.Point, Hash: "abc", InjectionTime: o.Start, ContactTime: o.Start.Add(time.Hour)},
	}, nil
}

type BatchWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env    *testsuite.TestWorkflowEnvironment
	engine *fakeEngine
}

func TestBatchWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(BatchWorkflowTestSuite))
}

func (s *BatchWorkflowTestSuite) SetupTest() {
	s.engine = &fakeEngine{points: map[string]bool{"P0": true, "P1": true}}
	acts := NewActivitiesImpl(quietLogger, s.engine)

	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflow(OverflowBatchWorkflow)
	s.env.RegisterWorkflow(PlumeBatchWorkflow)
	s.env.RegisterActivityWithOptions(acts.ComputeExposureActivity, activity.RegisterOptions{Name: ComputeExposureActivityName})
	s.env.RegisterActivityWithOptions(acts.ComputePlumesActivity, activity.RegisterOptions{Name: ComputePlumesActivityName})
}

func (s *BatchWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func (s *BatchWorkflowTestSuite) batch(points ...string) BatchRequest {
	req := BatchRequest{Step: 5 * time.Minute}
	for i, p := range points {
		start := t0.Add(time.Duration(i) * time.Hour)
		req.Overflows = append(req.Overflows, overflow.Overflow{Point: p, Start: start, End: start.Add(time.Hour)})
	}
	return req
}

func (s *BatchWorkflowTestSuite) TestOverflowBatch() {
	s.env.ExecuteWorkflow(OverflowBatchWorkflow, s.batch("P1", "P9", "P0"))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result ExposureResult
	s.NoError(s.env.GetWorkflowResult(&result))

	s.Require().Len(result.Exposures, 2)
	s.Equal("P1", result.Exposures[0].Point)
	s.Equal("P0", result.Exposures[1].Point)
	s.Equal([]string{"P9"}, result.Skipped)

	s.Require().Len(result.Summaries, 2)
	s.Equal(t0.Add(30*time.Minute), result.Summaries[0].FirstArrival)
	s.Equal(15*time.Minute, result.Summaries[0].Exposed)
	s.Equal(t0, result.HorizonStart)
	s.Equal(t0.Add(24*time.Hour), result.HorizonEnd)
}

func (s *BatchWorkflowTestSuite) TestOverflowBatchEmpty() {
	s.env.ExecuteWorkflow(OverflowBatchWorkflow, BatchRequest{Step: time.Minute})

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result ExposureResult
	s.NoError(s.env.GetWorkflowResult(&result))
	s.Empty(result.Exposures)
	s.Empty(result.Skipped)
}

func (s *BatchWorkflowTestSuite) TestOverflowBatchRejectsInvalidEvents() {
	req := s.batch("P0")
	req.Overflows = append(req.Overflows, overflow.Overflow{Point: "", Start: t0, End: t0})

	s.env.ExecuteWorkflow(OverflowBatchWorkflow, req)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().ErrorAs(err, &appErr)
	s.Equal(InvalidBatchErrorType, appErr.Type())
	s.True(appErr.NonRetryable())
	s.Contains(appErr.Error(), "empty point name")
}

func (s *BatchWorkflowTestSuite) TestOverflowBatchRejectsBadStep() {
	req := s.batch("P0")
	req.Step = 0

	s.env.ExecuteWorkflow(OverflowBatchWorkflow, req)

	s.True(s.env.IsWorkflowCompleted())
	var appErr *temporal.ApplicationError
	s.Require().ErrorAs(s.env.GetWorkflowError(), &appErr)
	s.Equal(InvalidBatchErrorType, appErr.Type())
}

func (s *BatchWorkflowTestSuite) TestOverflowBatchFailsOnDataError() {
	s.engine.fail = fmt.Errorf("cycle dh=1.20, dt=12.42: %w", errOutOfRange())

	s.env.ExecuteWorkflow(OverflowBatchWorkflow, s.batch("P0"))

	s.True(s.env.IsWorkflowCompleted())
	var actErr *temporal.ActivityError
	s.Require().ErrorAs(s.env.GetWorkflowError(), &actErr)

	var appErr *temporal.ApplicationError
	s.Require().ErrorAs(actErr, &appErr)
	s.Equal(OutOfRangeErrorType, appErr.Type())
	s.True(appErr.NonRetryable())
}

func (s *BatchWorkflowTestSuite) TestPlumeBatch() {
	s.env.ExecuteWorkflow(PlumeBatchWorkflow, s.batch("P0", "P9", "P1"))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())

	var result PlumeResult
	s.NoError(s.env.GetWorkflowResult(&result))

	s.Require().Len(result.Plumes, 4)
	s.True(result.Plumes[0].IsBoundary())
	s.Equal("P0", result.Plumes[0].Point)
	s.Equal("abc", result.Plumes[1].Hash)
	s.Equal("P1", result.Plumes[2].Point)
	s.Equal([]string{"P9"}, result.Skipped)
}

func TestGenerateWorkflowIDs(t *testing.T) {
	overflowID := GenerateOverflowWorkflowID()
	if !strings.HasPrefix(overflowID, OverflowWorkflowIDPrefix) {
		t.Errorf("Overflow ID should start with '%s', got '%s'", OverflowWorkflowIDPrefix, overflowID)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(overflowID, OverflowWorkflowIDPrefix)); err != nil {
		t.Errorf("Overflow ID should end with a UUID, got '%s'", overflowID)
	}

	plumeID := GeneratePlumeWorkflowID()
	if !strings.HasPrefix(plumeID, PlumeWorkflowIDPrefix) {
		t.Errorf("Plume ID should start with '%s', got '%s'", PlumeWorkflowIDPrefix, plumeID)
	}

	if GenerateOverflowWorkflowID() == overflowID {
		t.Errorf("Workflow IDs should be unique")
	}
}

package temporal

import (
	"time"

	"github.com/secretyv/ASur/pkg/model"
	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/station"
)

// Application error types raised by the batch workflows and activities
const (
	InvalidBatchErrorType = "InvalidBatch"
	UnknownPointErrorType = "UnknownPoint"
	OutOfRangeErrorType   = "OutOfRange"
)

// BatchRequest is a batch of overflow events computed with the same settings
type BatchRequest struct {
	Step              time.Duration       `json:"step"`
	MergeTransitTimes bool                `json:"merge_transit_times"`
	Overflows         []overflow.Overflow `json:"overflows"`
}

// ExposureRequest is the activity input for one event
type ExposureRequest struct {
	Step              time.Duration     `json:"step"`
	MergeTransitTimes bool              `json:"merge_transit_times"`
	Overflow          overflow.Overflow `json:"overflow"`
}

// ExposureResult is the outcome of an exposure batch. Exposures follow the
// order of the request; events on unknown points are listed in Skipped.
type ExposureResult struct {
	Exposures    []station.PointExposure `json:"exposures"`
	Summaries    []model.Summary         `json:"summaries,omitempty"`
	HorizonStart time.Time               `json:"horizon_start"`
	HorizonEnd   time.Time               `json:"horizon_end"`
	Skipped      []string                `json:"skipped,omitempty"`
}

// PlumeResult is the outcome of a plume batch
type PlumeResult struct {
	Plumes  []station.Plume `json:"plumes"`
	Skipped []string        `json:"skipped,omitempty"`
}

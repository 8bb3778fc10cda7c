package timeline

import (
	"time"
)

// BoolInterval represents a period of time with a boolean value
type BoolInterval struct {
	Value bool      `json:"value"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BoolTimeline is a collection of boolean intervals
type BoolTimeline []BoolInterval

// NumericInterval represents a period of time with a numeric value
type NumericInterval struct {
	Value float64   `json:"value"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NumericTimeline is a collection of numeric intervals
type NumericTimeline []NumericInterval

// Span returns the start of the first interval and the end of the last one
func (tl NumericTimeline) Span() (time.Time, time.Time) {
	if len(tl) == 0 {
		return time.Time{}, time.Time{}
	}
	return tl[0].Start, tl[len(tl)-1].End
}

// Values returns the interval values in order
func (tl NumericTimeline) Values() []float64 {
	out := make([]float64, len(tl))
	for i, iv := range tl {
		out[i] = iv.Value
	}
	return out
}

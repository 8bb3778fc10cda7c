package timeline

import (
	"time"
)

// WindowType represents different types of time windows
type WindowType string

const (
	TumblingWindow WindowType = "tumbling"
)

// Window represents a time window for aggregations
type Window struct {
	Type  WindowType    `json:"type"`
	Size  time.Duration `json:"size"`
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
}

// AsBool returns the window as a single true interval
func (w Window) AsBool() BoolTimeline {
	return BoolTimeline{{Value: true, Start: w.Start, End: w.End}}
}

// CreateTumblingWindows creates non-overlapping tumbling windows
func CreateTumblingWindows(start, end time.Time, windowSize time.Duration) []Window {
	var windows []Window
	if windowSize <= 0 {
		return windows
	}

	current := start
	for current.Before(end) {
		windowEnd := current.Add(windowSize)
		if windowEnd.After(end) {
			windowEnd = end
		}

		windows = append(windows, Window{
			Type:  TumblingWindow,
			Size:  windowSize,
			Start: current,
			End:   windowEnd,
		})

		current = windowEnd
	}

	return windows
}

// ApplyWindow keeps the intervals that start inside the window
func ApplyWindow(timeline NumericTimeline, window Window) NumericTimeline {
	var windowed NumericTimeline

	for _, interval := range timeline {
		if !interval.Start.Before(window.Start) && interval.Start.Before(window.End) {
			windowed = append(windowed, interval)
		}
	}

	return windowed
}

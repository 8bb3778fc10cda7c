package timeline

import (
	"sort"
	"time"
)

// Above converts a numeric timeline into a boolean timeline, true where the
// value is strictly greater than threshold. Adjacent true intervals are merged.
func Above(timeline NumericTimeline, threshold float64) BoolTimeline {
	var result BoolTimeline
	for _, interval := range timeline {
		if interval.Value > threshold {
			result = append(result, BoolInterval{
				Value: true,
				Start: interval.Start,
				End:   interval.End,
			})
		}
	}
	return mergeBoolIntervals(result)
}

// DurationWhere calculates total duration where condition is true
func DurationWhere(timeline BoolTimeline) time.Duration {
	var totalDuration time.Duration

	for _, interval := range timeline {
		if interval.Value {
			totalDuration += interval.End.Sub(interval.Start)
		}
	}

	return totalDuration
}

// AND combines boolean timelines with logical AND
func AND(timelines ...BoolTimeline) BoolTimeline {
	if len(timelines) == 0 {
		return BoolTimeline{}
	}
	if len(timelines) == 1 {
		return timelines[0]
	}

	result := timelines[0]
	for i := 1; i < len(timelines); i++ {
		result = andTwoTimelines(result, timelines[i])
	}
	return result
}

// OR combines boolean timelines with logical OR
func OR(timelines ...BoolTimeline) BoolTimeline {
	if len(timelines) == 0 {
		return BoolTimeline{}
	}
	if len(timelines) == 1 {
		return timelines[0]
	}

	var allIntervals BoolTimeline
	for _, timeline := range timelines {
		allIntervals = append(allIntervals, timeline...)
	}

	return mergeBoolIntervals(allIntervals)
}

// Helper functions

func mergeBoolIntervals(intervals BoolTimeline) BoolTimeline {
	if len(intervals) == 0 {
		return intervals
	}

	// Sort by start time
	sorted := make(BoolTimeline, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var merged BoolTimeline
	current := sorted[0]

	for i := 1; i < len(sorted); i++ {
		next := sorted[i]

		// Overlapping or adjacent with the same value
		if current.Value == next.Value && !current.End.Before(next.Start) {
			if next.End.After(current.End) {
				current.End = next.End
			}
		} else {
			merged = append(merged, current)
			current = next
		}
	}

	merged = append(merged, current)
	return merged
}

// LongestConsecutiveTrueDuration calculates the longest continuous period where Value is true in a BoolTimeline.
func LongestConsecutiveTrueDuration(timeline BoolTimeline) time.Duration {
	var longestDuration time.Duration
	for _, interval := range mergeBoolIntervals(timeline) {
		if !interval.Value {
			continue
		}
		if d := interval.End.Sub(interval.Start); d > longestDuration {
			longestDuration = d
		}
	}
	return longestDuration
}

func andTwoTimelines(a, b BoolTimeline) BoolTimeline {
	var result BoolTimeline

	// For AND, we need to find intersections where both are true
	for _, intervalA := range a {
		if !intervalA.Value {
			continue
		}

		for _, intervalB := range b {
			if !intervalB.Value {
				continue
			}

			start := intervalA.Start
			if intervalB.Start.After(start) {
				start = intervalB.Start
			}

			end := intervalA.End
			if intervalB.End.Before(end) {
				end = intervalB.End
			}

			if start.Before(end) {
				result = append(result, BoolInterval{
					Value: true,
					Start: start,
					End:   end,
				})
			}
		}
	}

	return mergeBoolIntervals(result)
}

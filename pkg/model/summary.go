package model

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/secretyv/ASur/pkg/overflow"
	"github.com/secretyv/ASur/pkg/station"
	"github.com/secretyv/ASur/pkg/timeline"
)

const day = 24 * time.Hour

// Horizon returns the display span of a batch result: it starts at the
// earliest spill start and lasts as many whole days as needed to reach the
// start of the latest exposure slot.
func Horizon(results []station.PointExposure) (time.Time, time.Time) {
	if len(results) == 0 {
		return time.Time{}, time.Time{}
	}

	events := make([]overflow.Overflow, len(results))
	for i, r := range results {
		events[i] = r.Overflow
	}
	start, _ := overflow.Horizon(events)

	latest := start
	for _, r := range results {
		for _, row := range r.Windows {
			for _, w := range row {
				if len(w) == 0 {
					continue
				}
				if last := w[len(w)-1].Start; last.After(latest) {
					latest = last
				}
			}
		}
	}

	days := int(latest.Sub(start)/day) + 1
	return start, start.Add(time.Duration(days) * day)
}

// DailyExposure is the exposure inside one day of the horizon.
type DailyExposure struct {
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Exposed time.Duration `json:"exposed"`
	Peak    float64       `json:"peak"`
}

// Summary condenses the exposure windows of one event and one transit
// time.
type Summary struct {
	Point         string          `json:"point"`
	Transit       int             `json:"transit"`
	Windows       int             `json:"windows"`
	FirstArrival  time.Time       `json:"first_arrival"`
	LastDeparture time.Time       `json:"last_departure"`
	Exposed       time.Duration   `json:"exposed"`
	Longest       time.Duration   `json:"longest"`
	Peak          float64         `json:"peak"`
	Mean          float64         `json:"mean"`
	Daily         []DailyExposure `json:"daily,omitempty"`
}

// Summaries condenses a batch result, one entry per event and transit
// time with at least one exposure window. Daily figures are split along
// the batch horizon.
func Summaries(results []station.PointExposure) []Summary {
	hStart, hEnd := Horizon(results)
	days := timeline.CreateTumblingWindows(hStart, hEnd, day)

	var out []Summary
	for _, r := range results {
		for it, row := range r.Windows {
			if len(row) == 0 {
				continue
			}
			out = append(out, summarize(r.Point, it, row, days))
		}
	}
	return out
}

func summarize(point string, transit int, row []timeline.NumericTimeline, days []timeline.Window) Summary {
	var (
		slots  timeline.NumericTimeline
		masks  []timeline.BoolTimeline
		values []float64
	)
	for _, w := range row {
		slots = append(slots, w...)
		masks = append(masks, timeline.Above(w, 0))
		values = append(values, w.Values()...)
	}
	exposed := timeline.OR(masks...)

	first, _ := row[0].Span()
	_, last := row[len(row)-1].Span()

	s := Summary{
		Point:         point,
		Transit:       transit,
		Windows:       len(row),
		FirstArrival:  first,
		LastDeparture: last,
		Exposed:       timeline.DurationWhere(exposed),
		Longest:       timeline.LongestConsecutiveTrueDuration(exposed),
		Peak:          floats.Max(values),
		Mean:          stat.Mean(values, nil),
	}

	for _, d := range days {
		inDay := timeline.ApplyWindow(slots, d)
		if len(inDay) == 0 {
			continue
		}
		s.Daily = append(s.Daily, DailyExposure{
			Start:   d.Start,
			End:     d.End,
			Exposed: timeline.DurationWhere(timeline.AND(exposed, d.AsBool())),
			Peak:    floats.Max(inDay.Values()),
		})
	}
	return s
}

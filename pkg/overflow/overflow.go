// Package overflow defines a sewer overflow event, the query unit of the
// arrival-time engine.
package overflow

import (
	"fmt"
	"strings"
	"time"
)

// Overflow is a spill at a named point between Start and End. TideCycles
// restricts the computation to some tide cycles; empty means all of them.
type Overflow struct {
	Point      string    `json:"point"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	TideCycles []string  `json:"tide_cycles,omitempty"`
}

func (o Overflow) String() string {
	return fmt.Sprintf("%s from %s to %s with %d tide cycles",
		o.Point, o.Start.UTC().Format(time.RFC3339), o.End.UTC().Format(time.RFC3339), len(o.TideCycles))
}

// Validate returns a description of everything wrong with the event,
// followed by the event itself, or an empty string when it is valid.
func (o Overflow) Validate() string {
	var errs []string
	if strings.TrimSpace(o.Point) == "" {
		errs = append(errs, "empty point name")
	}
	if !o.Start.Before(o.End) {
		errs = append(errs, "invalid times: start must be before end")
	}
	for i, c := range o.TideCycles {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Sprintf("invalid tide cycles: entry %d is blank", i))
		}
	}
	if len(errs) == 0 {
		return ""
	}
	errs = append(errs, o.String())
	return strings.Join(errs, "\n")
}

// InvalidOverflowError aggregates the validation messages of a batch.
type InvalidOverflowError struct {
	Messages []string
}

func (e *InvalidOverflowError) Error() string {
	return fmt.Sprintf("%d invalid overflow(s):\n%s", len(e.Messages), strings.Join(e.Messages, "\n\n"))
}

// ValidateAll validates every event and returns an *InvalidOverflowError
// holding the messages of all invalid ones.
func ValidateAll(overflows []Overflow) error {
	var msgs []string
	for _, o := range overflows {
		if msg := o.Validate(); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) > 0 {
		return &InvalidOverflowError{Messages: msgs}
	}
	return nil
}

// Horizon returns the earliest start and the latest end of the events.
func Horizon(overflows []Overflow) (time.Time, time.Time) {
	var start, end time.Time
	for i, o := range overflows {
		if i == 0 || o.Start.Before(start) {
			start = o.Start
		}
		if i == 0 || o.End.After(end) {
			end = o.End
		}
	}
	return start, end
}

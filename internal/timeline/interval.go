// Package timeline holds the subtitle interval model: an ordered set of
// timed spans built up from "mark" events and adjusted by timeline drags.
package timeline

import (
	"math"
	"time"

	"github.com/mgpai22/cuemark/internal/subtitle"
)

// ID identifies an interval for the lifetime of its store.
type ID uint64

// Interval is one subtitle time span in seconds. A nil End means the
// interval is still open, waiting for its closing mark.
type Interval struct {
	ID    ID       `json:"id"`
	Start float64  `json:"start"`
	End   *float64 `json:"end"`
	Text  string   `json:"text"`
}

// Closed reports whether the end has been marked.
func (iv Interval) Closed() bool {
	return iv.End != nil
}

// Complete reports whether the interval is eligible for export: closed and
// still non-empty once both edges are rounded to the millisecond.
func (iv Interval) Complete() bool {
	return iv.End != nil && spans(iv.Start, *iv.End)
}

// Contains reports whether t falls strictly inside a closed interval.
func (iv Interval) Contains(t float64) bool {
	return iv.End != nil && iv.Start < t && t < *iv.End
}

// Covers reports whether t is inside the half-open span [start, end).
func (iv Interval) Covers(t float64) bool {
	return iv.End != nil && iv.Start <= t && t < *iv.End
}

// EndOr returns the end time, or fallback when the interval is open.
func (iv Interval) EndOr(fallback float64) float64 {
	if iv.End == nil {
		return fallback
	}
	return *iv.End
}

func (iv Interval) clone() Interval {
	if iv.End != nil {
		iv.End = Seconds(*iv.End)
	}
	return iv
}

// Seconds returns a pointer to t, for building closed intervals.
func Seconds(t float64) *float64 {
	return &t
}

// ToDuration converts seconds to a duration rounded to the millisecond.
func ToDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	return time.Duration(math.Round(seconds*1000)) * time.Millisecond
}

// FromDuration converts a duration back to seconds.
func FromDuration(d time.Duration) float64 {
	return d.Seconds()
}

// FormatClock renders seconds as HH:MM:SS,mmm.
func FormatClock(seconds float64) string {
	return subtitle.FormatSRTTime(ToDuration(seconds))
}

// spans reports whether start..end survives millisecond rounding.
func spans(start, end float64) bool {
	return ToDuration(start) < ToDuration(end)
}

func validTime(t float64) bool {
	return !math.IsNaN(t) && !math.IsInf(t, 0) && t >= 0
}

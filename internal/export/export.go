// Package export renders completed timeline intervals as timed-text files.
package export

import (
	"fmt"
	"sort"

	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

// SRT renders the completed intervals as SubRip text.
func SRT(intervals []timeline.Interval) (string, error) {
	return Render(subtitle.FormatSRT, intervals)
}

// Render renders the completed intervals in the given format. Open or
// zero-length intervals are skipped; timeline.ErrNothingToExport is returned
// when none remain.
func Render(format subtitle.Format, intervals []timeline.Interval) (string, error) {
	sub, err := ToSubtitle(intervals)
	if err != nil {
		return "", err
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return "", err
	}
	sub.Format = string(format)
	return writer.Render(sub), nil
}

// WriteFile renders the intervals and writes them to path.
func WriteFile(path string, format subtitle.Format, intervals []timeline.Interval) error {
	sub, err := ToSubtitle(intervals)
	if err != nil {
		return err
	}
	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	sub.Format = string(format)
	if err := writer.Write(sub, path); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}
	return nil
}

// ToSubtitle converts the completed intervals, in start order, to subtitle
// entries indexed from 1.
func ToSubtitle(intervals []timeline.Interval) (*subtitle.Subtitle, error) {
	completed := timeline.CompletedOf(intervals)
	if len(completed) == 0 {
		return nil, timeline.ErrNothingToExport
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Start < completed[j].Start
	})

	entries := make([]subtitle.Entry, len(completed))
	for i, iv := range completed {
		entries[i] = subtitle.Entry{
			Index:     i + 1,
			StartTime: timeline.ToDuration(iv.Start),
			EndTime:   timeline.ToDuration(*iv.End),
			Text:      iv.Text,
		}
	}
	return &subtitle.Subtitle{Entries: entries}, nil
}

// FromSubtitle converts parsed subtitle entries into intervals suitable for
// timeline.Store.Load.
func FromSubtitle(sub *subtitle.Subtitle) []timeline.Interval {
	out := make([]timeline.Interval, 0, len(sub.Entries))
	for _, e := range sub.Entries {
		out = append(out, timeline.Interval{
			Start: timeline.FromDuration(e.StartTime),
			End:   timeline.Seconds(timeline.FromDuration(e.EndTime)),
			Text:  e.Text,
		})
	}
	return out
}

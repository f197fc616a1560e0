package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// parses a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatSRT, "":
		return FormatSRT, nil
	case FormatVTT:
		return FormatVTT, nil
	case FormatASS, "ssa":
		return FormatASS, nil
	default:
		return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", name)
	}
}

// represents transcribed audio segment
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// interface for rendering subtitles
type Writer interface {
	Render(subtitle *Subtitle) string
	Write(subtitle *Subtitle, path string) error
}
